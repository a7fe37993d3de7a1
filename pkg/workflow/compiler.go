package workflow

import (
	"github.com/angelsen/ry-tool/pkg/logger"
	"github.com/angelsen/ry-tool/pkg/parser"
	"github.com/angelsen/ry-tool/pkg/template"
)

var compilerLog = logger.New("workflow:compiler")

// Compiler ties the document loader, template engine and generator
// together for one run. It never executes the generated text.
type Compiler struct {
	registry *Registry
}

// NewCompiler returns a compiler backed by the built-in executor
// registry.
func NewCompiler() *Compiler {
	return &Compiler{registry: NewRegistry()}
}

// Compile loads the document named by the context and generates its
// shell text. Loader and template failures abort compilation; malformed
// steps degrade to diagnostic fragments in the output instead.
func (c *Compiler) Compile(ctx *ExecutionContext) (string, error) {
	compilerLog.Printf("Compiling %s (args=%v)", ctx.DocumentPath, ctx.Args)
	doc, err := parser.LoadFile(ctx.DocumentPath, ctx.Args)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, doc)
}

// CompileBytes compiles an in-memory document. Relative includes and
// reads resolve against baseDir.
func (c *Compiler) CompileBytes(data []byte, baseDir string, ctx *ExecutionContext) (string, error) {
	doc, err := parser.LoadBytes(data, baseDir, ctx.Args)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, doc)
}

func (c *Compiler) generate(ctx *ExecutionContext, doc any) (string, error) {
	engine := template.NewEngine(ctx.Args, ctx.Metadata)
	return NewGenerator(ctx, engine, c.registry).Generate(doc)
}
