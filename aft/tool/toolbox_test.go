package tool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/afterr"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool/tooltest"
)

func TestToolbox_CommandLines(t *testing.T) {
	rec := tooltest.NewRecorder()
	box, err := tool.NewToolbox(tool.DefaultConfig(), rec)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, box.Apktool.Decode(ctx, "app.apk", "out/smali"))
	require.NoError(t, box.Apktool.Build(ctx, "out/smali", "dist/app.apk"))
	require.NoError(t, box.Jadx.Decompile(ctx, "app.apk", "out/java"))
	require.NoError(t, box.Zipalign.Align(ctx, "in.apk", "out.apk"))

	assert.Equal(t, [][]string{
		{"d", "app.apk", "-o", "out/smali", "-f"},
		{"b", "out/smali", "-o", "dist/app.apk"},
	}, rec.Invocations(tool.ApktoolName))
	assert.Equal(t, [][]string{{"app.apk", "-d", "out/java", "--deobf"}}, rec.Invocations(tool.JadxName))
	assert.Equal(t, [][]string{{"-p", "-f", "4", "in.apk", "out.apk"}}, rec.Invocations(tool.ZipalignName))
}

func TestToolbox_ExtraArgsAndTimeout(t *testing.T) {
	rec := tooltest.NewRecorder()
	cfg := tool.DefaultConfig()
	cfg.Jadx.Args = `--threads-count 2 --log-level "error"`
	cfg.Jadx.Timeout = time.Minute

	box, err := tool.NewToolbox(cfg, rec)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, box.Jadx.Timeout)

	require.NoError(t, box.Jadx.Decompile(context.Background(), "app.apk", "java"))
	assert.Equal(t, [][]string{{"--threads-count", "2", "--log-level", "error", "app.apk", "-d", "java", "--deobf"}}, rec.Invocations(tool.JadxName))
}

func TestToolbox_BadExtraArgs(t *testing.T) {
	cfg := tool.DefaultConfig()
	cfg.Apktool.Args = `"unterminated`
	_, err := tool.NewToolbox(cfg, tooltest.NewRecorder())
	require.Error(t, err)
}

func TestToolbox_SigningRedactsSecrets(t *testing.T) {
	rec := tooltest.NewRecorder()
	box, err := tool.NewToolbox(tool.DefaultConfig(), rec)
	require.NoError(t, err)

	opts := tool.SignOptions{
		Input:     "in.apk",
		Output:    "out.apk",
		Keystore:  "debug.keystore",
		Alias:     "androiddebugkey",
		StorePass: "s3cret",
		V1:        true,
		V2:        true,
	}
	require.NoError(t, box.Apksigner.Sign(context.Background(), opts))
	require.NoError(t, box.Jarsigner.Sign(context.Background(), opts))

	require.Len(t, rec.Commands, 2)
	for _, cmd := range rec.Commands {
		assert.Contains(t, cmd.Argv(), "debug.keystore")
		assert.NotContains(t, cmd.String(), "s3cret")
	}

	apksigner := rec.Invocations(tool.ApksignerName)[0]
	assert.Contains(t, apksigner, "pass:s3cret")
	assert.Equal(t, "in.apk", apksigner[len(apksigner)-1])

	jarsigner := rec.Invocations(tool.JarsignerName)[0]
	assert.Equal(t, []string{"out.apk", "androiddebugkey"}, jarsigner[len(jarsigner)-2:])
}

func TestToolbox_KeytoolGenerateKey(t *testing.T) {
	rec := tooltest.NewRecorder()
	box, err := tool.NewToolbox(tool.DefaultConfig(), rec)
	require.NoError(t, err)

	require.NoError(t, box.Keytool.GenerateKey(context.Background(), tool.KeyOptions{
		Keystore:     "debug.keystore",
		Alias:        "androiddebugkey",
		StorePass:    "android",
		DName:        "CN=Android Debug,O=Android,C=US",
		KeyAlgorithm: "RSA",
		KeySize:      2048,
		ValidityDays: 10000,
	}))

	argv := rec.Invocations(tool.KeytoolName)[0]
	assert.Contains(t, argv, "-genkeypair")
	assert.Contains(t, argv, "CN=Android Debug,O=Android,C=US")
	assert.Contains(t, argv, "10000")
}

func TestToolbox_Check(t *testing.T) {
	rec := tooltest.NewRecorder().WithMissing(tool.JadxName)
	rec.Outputs[tool.ApktoolName] = "2.3.4\n"
	rec.Outputs[tool.ApksignerName] = "0.9\n"

	box, err := tool.NewToolbox(tool.DefaultConfig(), rec)
	require.NoError(t, err)

	statuses := map[string]tool.Status{}
	for _, s := range box.Check(context.Background()) {
		statuses[s.Name] = s
	}

	require.Len(t, statuses, 6)
	assert.True(t, statuses[tool.ApktoolName].Found)
	assert.Equal(t, "2.3.4", statuses[tool.ApktoolName].Version)
	assert.False(t, statuses[tool.ApktoolName].MeetsMinimum)

	assert.False(t, statuses[tool.JadxName].Found)
	assert.True(t, statuses[tool.ApksignerName].MeetsMinimum)
	assert.True(t, statuses[tool.ZipalignName].Found)
	assert.Empty(t, statuses[tool.ZipalignName].Version)

	assert.False(t, box.Available(box.Jadx.Tool))
	assert.True(t, errors.Is(box.Require(box.Jadx.Tool), afterr.ErrToolNotFound))
	assert.True(t, errors.Is(box.Jadx.Decompile(context.Background(), "a.apk", "out"), afterr.ErrToolNotFound))
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		output   string
		expected string
	}{
		{"2.9.3\n", "2.9.3"},
		{"jadx version: 1.4.7\n", "1.4.7"},
		{"Picked up _JAVA_OPTIONS\n0.9", "0.9"},
		{"no version here", ""},
	}

	for _, test := range tests {
		t.Run(test.output, func(t *testing.T) {
			assert.Equal(t, test.expected, tool.ParseVersion(test.output))
		})
	}
}
