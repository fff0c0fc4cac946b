package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/backdoor-game/client/internal/protocol"
)

var errEmptyInput = errors.New("empty input")

// parseInput turns a line of player text into a game command.
//
// Supported forms:
//
//	look [target]
//	use <item> [on <target>]
//	talk [to] <npc>
func parseInput(line string) (command string, payload any, err error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", nil, errEmptyInput
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "look", "l":
		target := strings.Join(args, "_")
		return protocol.CmdLook, protocol.LookPayload{Target: target}, nil

	case "use", "u":
		if len(args) == 0 {
			return "", nil, errors.New("use what? Try: use <item> [on <target>]")
		}
		// Split on a literal "on": everything before is the item,
		// everything after is the target.
		item := args
		var target []string
		for i, a := range args {
			if strings.EqualFold(a, "on") {
				item = args[:i]
				target = args[i+1:]
				break
			}
		}
		if len(item) == 0 {
			return "", nil, errors.New("use what? Try: use <item> [on <target>]")
		}
		return protocol.CmdUseItem, protocol.UseItemPayload{
			Item:   strings.Join(item, "_"),
			Target: strings.Join(target, "_"),
		}, nil

	case "talk", "t":
		if len(args) > 0 && strings.EqualFold(args[0], "to") {
			args = args[1:]
		}
		if len(args) == 0 {
			return "", nil, errors.New("talk to whom? Try: talk to <name>")
		}
		return protocol.CmdTalkTo, protocol.TalkToPayload{
			NPCID: strings.Join(args, "_"),
		}, nil

	default:
		return "", nil, fmt.Errorf("I don't know how to %q. Try: look, use, talk.", verb)
	}
}
