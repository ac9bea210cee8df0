package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
)

// parseWithID parses args and requires a non-empty -id flag.
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	id := fs.String("id", "", "Resource id")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return "", errors.New("-id is required")
	}
	return v, nil
}

// visited returns the names of flags explicitly set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func stringIfSet(set map[string]bool, name, v string) *string {
	if !set[name] {
		return nil
	}
	return &v
}

func boolIfSet(set map[string]bool, name string, v bool) *bool {
	if !set[name] {
		return nil
	}
	return &v
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// decodeObject parses a -data flag value as a JSON object.
func decodeObject(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("-data is required")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("-data must be a JSON object: %w", err)
	}
	if obj == nil {
		return nil, errors.New("-data must be a JSON object")
	}
	return obj, nil
}
