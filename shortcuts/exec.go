package shortcuts

import (
	"errors"
	"strings"
)

// splitExec breaks an Exec value into program and arguments. Arguments may
// be double quoted, with \" \\ \` and \$ escapes inside quotes. Field codes
// are dropped since nothing is ever passed to the launched program, and %%
// becomes a literal %.
func splitExec(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		started bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quoted && c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == '"':
			quoted = !quoted
			started = true
		case !quoted && (c == ' ' || c == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		case c == '%' && i+1 < len(s):
			i++
			switch s[i] {
			case '%':
				cur.WriteByte('%')
				started = true
			case 'f', 'F', 'u', 'U', 'i', 'c', 'k', 'd', 'D', 'n', 'N', 'v', 'm':
			default:
				cur.WriteByte('%')
				cur.WriteByte(s[i])
				started = true
			}
		default:
			cur.WriteByte(c)
			started = true
		}
	}

	if quoted {
		return nil, errors.New("unterminated quote in Exec")
	}
	if started {
		args = append(args, cur.String())
	}
	if len(args) == 0 || args[0] == "" {
		return nil, errors.New("empty Exec")
	}
	return args, nil
}
