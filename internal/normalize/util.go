package normalize

import "gopkg.in/yaml.v3"

// unmarshalAny decodes raw into v, accepting either JSON or YAML input —
// YAML is a superset of JSON, so a single yaml.v3 decode handles both.
func unmarshalAny(raw []byte, v interface{}) error {
	return yaml.Unmarshal(raw, v)
}

func stringSliceContains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
