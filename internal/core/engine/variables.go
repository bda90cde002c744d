package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// normalizeValues turns a values struct or map into the generic form the
// templates see, using the json names of struct fields.
func normalizeValues(values interface{}) (map[string]interface{}, error) {
	if values == nil {
		return map[string]interface{}{}, nil
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal values: %w", err)
	}

	var vars map[string]interface{}
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("values must be an object: %w", err)
	}
	if vars == nil {
		vars = map[string]interface{}{}
	}
	return vars, nil
}

// lookupVariable resolves a path such as "apiServerLoadBalancer.provider" or
// "kubeAPIOptions[0]".
func lookupVariable(vars map[string]interface{}, path string) (interface{}, error) {
	var current interface{} = vars
	for _, segment := range strings.Split(path, ".") {
		name, indexes, err := parseSegment(segment)
		if err != nil {
			return nil, fmt.Errorf("invalid variable path %q: %w", path, err)
		}

		object, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("variable %q: %s is not inside an object", path, name)
		}
		value, ok := object[name]
		if !ok {
			return nil, fmt.Errorf("variable %q not found", path)
		}
		current = value

		for _, index := range indexes {
			list, ok := current.([]interface{})
			if !ok {
				return nil, fmt.Errorf("variable %q: %s is not a list", path, name)
			}
			if index >= len(list) {
				return nil, fmt.Errorf("variable %q: index %d out of range", path, index)
			}
			current = list[index]
		}
	}
	return current, nil
}

// parseSegment splits "name[1][2]" into the name and its indexes.
func parseSegment(segment string) (string, []int, error) {
	name, rest, found := strings.Cut(segment, "[")
	if name == "" {
		return "", nil, fmt.Errorf("empty name in %q", segment)
	}
	if !found {
		return name, nil, nil
	}

	var indexes []int
	rest = "[" + rest
	for rest != "" {
		end := strings.Index(rest, "]")
		if !strings.HasPrefix(rest, "[") || end < 0 {
			return "", nil, fmt.Errorf("malformed index in %q", segment)
		}
		index, err := strconv.Atoi(rest[1:end])
		if err != nil || index < 0 {
			return "", nil, fmt.Errorf("invalid index %q in %q", rest[1:end], segment)
		}
		indexes = append(indexes, index)
		rest = rest[end+1:]
	}
	return name, indexes, nil
}
