package tool

import "context"

// Jadx decompiles DEX bytecode into Java sources.
type Jadx struct {
	Tool
	exec Executor
}

// Decompile runs "jadx <apk> -d <out> --deobf".
func (j Jadx) Decompile(ctx context.Context, apkPath, outDir string) error {
	return j.exec.Run(ctx, Command{
		Tool: j.Tool,
		Args: []string{apkPath, "-d", outDir, "--deobf"},
	})
}
