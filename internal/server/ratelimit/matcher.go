package ratelimit

import "strings"

// Match returns the first rule for method whose pattern matches path, or nil.
func Match(method, path string, rules []Rule) *Rule {
	segs := split(path)
	for i := range rules {
		r := &rules[i]
		if r.Method == method && segmentsMatch(split(r.Pattern), segs) {
			return r
		}
	}
	return nil
}

func split(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func segmentsMatch(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, s := range pattern {
		if s != "*" && s != path[i] {
			return false
		}
	}
	return true
}
