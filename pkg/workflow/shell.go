package workflow

import (
	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/document"
	"github.com/angelsen/ry-tool/pkg/envutil"
)

// ShellExecutor compiles shell script bodies.
type ShellExecutor struct{}

func (e *ShellExecutor) Name() string { return "shell" }

func (e *ShellExecutor) Aliases() []string { return []string{"sh", "bash", "zsh"} }

// Compile encodes the script by default so embedded quotes survive any
// surrounding composition. Setting the base64 config flag to false
// emits the script verbatim, which lets variable references expand in
// the final invoking shell instead of being captured here. The shell
// config key overrides the interpreter binary.
func (e *ShellExecutor) Compile(script string, config *document.Map) string {
	useBase64 := true
	if value, ok := config.Get("base64"); ok {
		useBase64 = document.Truthy(value)
	}
	if !useBase64 {
		return script
	}

	shell, ok := config.GetString("shell")
	if !ok {
		shell = envutil.GetStringFromEnv(constants.EnvVarShell, constants.DefaultShellPath, nil)
	}
	return encodeScript(script, shell)
}
