package auth

import "strings"

// Key builds the flattened permission key for a code and action.
func Key(code, action string) string {
	return code + "." + action
}

// HasGrant checks keys for code.action, walking up the dotted code so that a
// module or tab grant covers the features inside it.
func HasGrant(keys []string, code, action string) bool {
	if code == "" || action == "" {
		return false
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	for c := code; c != ""; c = parentCode(c) {
		if _, ok := set[Key(c, action)]; ok {
			return true
		}
	}
	return false
}

func HasAnyGrant(keys []string, code string, actions ...string) bool {
	for _, a := range actions {
		if HasGrant(keys, code, a) {
			return true
		}
	}
	return false
}

func parentCode(code string) string {
	i := strings.LastIndex(code, ".")
	if i < 0 {
		return ""
	}
	return code[:i]
}
