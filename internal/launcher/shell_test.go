package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEval(t *testing.T) {
	tests := []struct {
		name string
		opts ShellOptions
		want string
	}{
		{
			name: "empty",
			opts: ShellOptions{},
			want: "",
		},
		{
			name: "scalars and nested objects",
			opts: ShellOptions{
				GlobalVars: map[string]interface{}{
					"MongoRunner.dataDir": "/data/db/job0/mongorunner",
					"TestData": map[string]interface{}{
						"threadID":       1,
						"isMainTest":     false,
						"numTestClients": 2,
					},
				},
			},
			want: `MongoRunner.dataDir = "/data/db/job0/mongorunner"; ` +
				`TestData = new Object(); ` +
				`TestData.isMainTest = false; ` +
				`TestData.numTestClients = 2; ` +
				`TestData.threadID = 1`,
		},
		{
			name: "non identifier keys are bracketed",
			opts: ShellOptions{
				GlobalVars: map[string]interface{}{
					"TestData": map[string]interface{}{
						"set-parameters": map[string]interface{}{},
					},
				},
			},
			want: `TestData = new Object(); TestData["set-parameters"] = new Object()`,
		},
		{
			name: "lists and extra eval",
			opts: ShellOptions{
				GlobalVars: map[string]interface{}{
					"TestData": map[string]interface{}{
						"roleGraph": []interface{}{"a", "b"},
					},
				},
				Eval: "load('jstests/libs/override.js')",
			},
			want: `TestData = new Object(); TestData.roleGraph = ["a","b"]; load('jstests/libs/override.js')`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatEval(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatEvalRejectsUnencodableValues(t *testing.T) {
	_, err := FormatEval(ShellOptions{
		GlobalVars: map[string]interface{}{"bad": make(chan int)},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestBuildArgs(t *testing.T) {
	opts := ShellOptions{
		GlobalVars: map[string]interface{}{"TestData": map[string]interface{}{"threadID": 0}},
		Flags:      map[string]string{"nodb": "", "readMode": "commands"},
	}

	args, err := BuildArgs("jstests/core/find.js", "mongodb://localhost:20000", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--nodb",
		"--readMode", "commands",
		"--eval", "TestData = new Object(); TestData.threadID = 0",
		"mongodb://localhost:20000",
		"jstests/core/find.js",
	}, args)
}

func TestBuildArgsWithoutConnectionOrVars(t *testing.T) {
	args, err := BuildArgs("a.js", "", ShellOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js"}, args)
}

func TestCloneIsIndependent(t *testing.T) {
	orig := ShellOptions{
		GlobalVars: map[string]interface{}{
			"TestData": map[string]interface{}{
				"nested": map[string]interface{}{"x": 1},
				"list":   []interface{}{map[string]interface{}{"y": 2}},
			},
		},
		ProcessEnv: map[string]string{"A": "1"},
		Flags:      map[string]string{"nodb": ""},
	}

	clone := orig.Clone()
	clone.TestData()["nested"].(map[string]interface{})["x"] = 99
	clone.TestData()["list"].([]interface{})[0].(map[string]interface{})["y"] = 99
	clone.ProcessEnv["A"] = "2"
	clone.Flags["shell"] = ""

	assert.Equal(t, 1, orig.TestData()["nested"].(map[string]interface{})["x"])
	assert.Equal(t, 2, orig.TestData()["list"].([]interface{})[0].(map[string]interface{})["y"])
	assert.Equal(t, "1", orig.ProcessEnv["A"])
	assert.NotContains(t, orig.Flags, "shell")
}

func TestCloneKeepsNilMaps(t *testing.T) {
	clone := ShellOptions{Eval: "x"}.Clone()
	assert.Nil(t, clone.GlobalVars)
	assert.Nil(t, clone.ProcessEnv)
	assert.Nil(t, clone.Flags)
	assert.Equal(t, "x", clone.Eval)
	assert.Nil(t, clone.TestData())
}
