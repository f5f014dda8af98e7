package tool

import "context"

// Apktool decodes APK resources and bytecode into smali and rebuilds them.
type Apktool struct {
	Tool
	exec Executor
}

// Decode runs "apktool d <apk> -o <out> -f".
func (a Apktool) Decode(ctx context.Context, apkPath, outDir string) error {
	return a.exec.Run(ctx, Command{
		Tool: a.Tool,
		Args: []string{"d", apkPath, "-o", outDir, "-f"},
	})
}

// Build runs "apktool b <dir> -o <out>".
func (a Apktool) Build(ctx context.Context, projectDir, outAPK string) error {
	return a.exec.Run(ctx, Command{
		Tool: a.Tool,
		Args: []string{"b", projectDir, "-o", outAPK},
	})
}
