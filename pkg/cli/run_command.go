package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelsen/ry-tool/pkg/console"
	"github.com/angelsen/ry-tool/pkg/constants"
	"github.com/angelsen/ry-tool/pkg/library"
	"github.com/angelsen/ry-tool/pkg/logger"
	"github.com/angelsen/ry-tool/pkg/parser"
	"github.com/angelsen/ry-tool/pkg/workflow"
)

var runLog = logger.New("cli:run")

// RunOptions carries the root-command flags into a run.
type RunOptions struct {
	// Output names the file the generated script is written to. Empty
	// means stdout.
	Output string

	// Watch recompiles on document changes. Requires Output.
	Watch bool

	// LibraryDir forces library context for documents that live outside
	// a libraries tree.
	LibraryDir string
}

// RunDocument resolves a library name or document path, compiles it
// with the given arguments, and writes the generated shell text.
// Nothing is ever executed here; the caller decides what to do with
// the output.
func RunDocument(name string, args []string, opts RunOptions) error {
	runLog.Printf("Run: name=%s args=%v output=%s watch=%v", name, args, opts.Output, opts.Watch)

	resolver := library.NewResolver()
	docPath, ok := resolver.Resolve(name)
	if !ok {
		return notFoundError(name, resolver)
	}

	ctx := buildExecutionContext(docPath, args, opts.LibraryDir)

	if opts.Watch {
		if opts.Output == "" {
			return fmt.Errorf("--watch requires --output: watching to stdout would interleave scripts")
		}
		return watchAndRecompile(ctx, opts.Output)
	}

	script, err := compileDocument(ctx)
	if err != nil {
		return err
	}
	return writeOutput(script, opts.Output)
}

// buildExecutionContext assembles the compiler's read-only invocation
// state: library detection, metadata for the template context.
func buildExecutionContext(docPath string, args []string, forcedLibraryDir string) *workflow.ExecutionContext {
	libDir := forcedLibraryDir
	if libDir == "" {
		libDir = library.DetectLibraryDir(docPath)
	}

	ctx := &workflow.ExecutionContext{
		DocumentPath: docPath,
		Args:         args,
	}
	if libDir != "" {
		ctx.LibraryDir = libDir
		meta := library.LoadMetadata(libDir)
		ctx.Metadata = meta.TemplateContext(libraryName(libDir))
		runLog.Printf("Library context: dir=%s name=%s version=%s", libDir, libraryName(libDir), meta.Version)
	}
	return ctx
}

// compileDocument runs one compilation and renders loader errors with
// source context when the document is readable.
func compileDocument(ctx *workflow.ExecutionContext) (string, error) {
	script, err := workflow.NewCompiler().Compile(ctx)
	if err == nil {
		return script, nil
	}

	var loaderErr *parser.LoaderError
	if errors.As(err, &loaderErr) {
		if content, readErr := os.ReadFile(ctx.DocumentPath); readErr == nil {
			fmt.Fprintln(os.Stderr, parser.FormatLoaderError(loaderErr, string(content)))
			return "", fmt.Errorf("failed to compile %s", console.ToRelativePath(ctx.DocumentPath))
		}
	}
	return "", err
}

func writeOutput(script, output string) error {
	if output == "" {
		fmt.Println(script)
		return nil
	}
	if err := os.WriteFile(output, []byte(script+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	runLog.Printf("Wrote %d bytes to %s", len(script)+1, output)
	return nil
}

// notFoundError builds a resolution failure with suggestions drawn
// from the installed libraries, so typos point somewhere useful.
func notFoundError(name string, resolver *library.Resolver) error {
	suggestions := []string{
		fmt.Sprintf("run '%s list' to see installed libraries", constants.BinaryName),
		fmt.Sprintf("run '%s search %s' to look for it in the registry", constants.BinaryName, name),
	}
	for _, candidate := range resolver.ListAvailable() {
		if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
			suggestions = append([]string{fmt.Sprintf("did you mean '%s'?", candidate)}, suggestions...)
			break
		}
	}
	fmt.Fprintln(os.Stderr, console.FormatErrorWithSuggestions(
		fmt.Sprintf("library or document '%s' not found", name), suggestions))
	return fmt.Errorf("'%s' not found", name)
}

// libraryName extracts the library's name from its directory path.
func libraryName(libDir string) string {
	return filepath.Base(filepath.Clean(libDir))
}
