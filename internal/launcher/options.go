package launcher

// TestDataKey is the global variable holding the per-test data object.
const TestDataKey = "TestData"

// ShellOptions describe how the shell is invoked beyond the executable, the
// script and the connection string.
type ShellOptions struct {
	// GlobalVars are assigned in the shell before the script runs. Nested maps
	// become shell objects; TestData is one of them.
	GlobalVars map[string]interface{} `yaml:"global_vars,omitempty" json:"global_vars,omitempty"`
	// ProcessEnv is added on top of the harness's own environment.
	ProcessEnv map[string]string `yaml:"process_env,omitempty" json:"process_env,omitempty"`
	// Flags are passed as --key value; an empty value passes only --key.
	Flags map[string]string `yaml:"flags,omitempty" json:"flags,omitempty"`
	// Eval is appended to the generated --eval string.
	Eval string `yaml:"eval,omitempty" json:"eval,omitempty"`
}

// Clone returns a copy of o that shares no maps or slices with it.
func (o ShellOptions) Clone() ShellOptions {
	clone := ShellOptions{Eval: o.Eval}
	if o.GlobalVars != nil {
		clone.GlobalVars = cloneMap(o.GlobalVars)
	}
	if o.ProcessEnv != nil {
		clone.ProcessEnv = make(map[string]string, len(o.ProcessEnv))
		for k, v := range o.ProcessEnv {
			clone.ProcessEnv[k] = v
		}
	}
	if o.Flags != nil {
		clone.Flags = make(map[string]string, len(o.Flags))
		for k, v := range o.Flags {
			clone.Flags[k] = v
		}
	}
	return clone
}

// TestData returns the TestData object of o, or nil when there is none.
func (o ShellOptions) TestData() map[string]interface{} {
	td, _ := o.GlobalVars[TestDataKey].(map[string]interface{})
	return td
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out
	default:
		return val
	}
}
