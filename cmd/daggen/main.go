package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/geofffranks/yaml"
	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"github.com/mattn/go-isatty"
	"github.com/starkandwayne/goutils/ansi"
	"github.com/voxelbrain/goptions"

	"github.com/wayneeseguin/daggen/internal/config"
	"github.com/wayneeseguin/daggen/internal/log"
	"github.com/wayneeseguin/daggen/internal/pack"
	"github.com/wayneeseguin/daggen/internal/transform"
	"github.com/wayneeseguin/daggen/pkg/daggen"
	"github.com/wayneeseguin/daggen/pkg/daggen/load"
)

// Version holds the current version of daggen.
var Version = "(development)"

var getopts = func(o interface{}) {
	if err := goptions.Parse(o); err != nil {
		usage()
	}
}

var exit = func(code int) { os.Exit(code) }

var usage = func() {
	goptions.PrintHelp()
	exit(1)
}

type compileOpts struct {
	Output  string `goptions:"-o, --output, description='Output path; suffix selects the packaging format (.tar.gz, .tgz, .zip, .yaml, .yml)'"`
	Config  string `goptions:"--config, description='Path to a daggen.toml configuration file'"`
	Profile string `goptions:"--profile, description='Named configuration profile to apply'"`
	Image   string `goptions:"--default-image, description='Container image used for ops whose metadata sets none'"`
	Help    bool   `goptions:"--help, -h"`
	Files   goptions.Remainder
}

type fmtOpts struct {
	Help  bool `goptions:"--help, -h"`
	Files goptions.Remainder
}

type diffOpts struct {
	Files goptions.Remainder `goptions:"description='Show the semantic differences between two compiled manifests'"`
}

func main() {
	var options struct {
		Debug   bool        `goptions:"-D, --debug, description='Enable debugging'"`
		Version bool        `goptions:"-v, --version, description='Display version information'"`
		Color   string      `goptions:"--color, description='Control color output (on/off/auto, default: auto)'"`
		Action  goptions.Verbs
		Compile compileOpts `goptions:"compile"`
		Fmt     fmtOpts     `goptions:"fmt"`
		Diff    diffOpts    `goptions:"diff"`
	}
	getopts(&options)

	if options.Debug {
		log.SetDebug(true)
	}

	if options.Version {
		fmt.Printf("%s - Version %s\n", os.Args[0], Version)
		exit(0)
		return
	}

	shouldColor := false
	switch options.Color {
	case "on":
		shouldColor = true
	case "off":
		shouldColor = false
	case "auto", "":
		shouldColor = isatty.IsTerminal(os.Stderr.Fd())
	default:
		log.Error("invalid --color option %q; must be on, off, or auto", options.Color)
		exit(1)
		return
	}
	ansi.Color(shouldColor)

	switch options.Action {
	case "compile":
		if options.Compile.Help || len(options.Compile.Files) != 1 {
			usage()
			return
		}
		if err := runCompile(options.Compile); err != nil {
			log.Error("%s", err)
			exit(2)
			return
		}

	case "fmt":
		if options.Fmt.Help || len(options.Fmt.Files) != 1 {
			usage()
			return
		}
		if err := runFmt(options.Fmt.Files[0]); err != nil {
			log.Error("%s", err)
			exit(2)
			return
		}

	case "diff":
		if len(options.Diff.Files) != 2 {
			usage()
			return
		}
		output, differences, err := diffFiles(options.Diff.Files[0], options.Diff.Files[1])
		if err != nil {
			log.Error("%s", err)
			exit(2)
			return
		}
		fmt.Println(output)
		if differences {
			exit(1)
			return
		}

	default:
		usage()
		return
	}
	exit(0)
}

func runCompile(opts compileOpts) error {
	pipeline, err := load.File(opts.Files[0])
	if err != nil {
		return fmt.Errorf("loading pipeline description: %w", err)
	}

	cfgLoader := config.NewLoader()
	cfg, err := cfgLoader.Resolve(opts.Config, opts.Profile)
	if err != nil {
		return err
	}

	if len(pipeline.Config.OpTransformers) == 0 {
		pipeline.Config.OpTransformers = []daggen.OpTransformer{transform.PodEnvTransformer{}}
	}
	if pipeline.Config.ServiceAccountName == "" {
		pipeline.Config.ServiceAccountName = cfg.ServiceAccountName
	}

	handler := daggen.ContainerHandler{Image: opts.Image}

	result, err := daggen.Compile(pipeline, daggen.DNSLabelSanitizer{}, handler, nil)
	if err != nil {
		return fmt.Errorf("compiling pipeline: %w", err)
	}
	for _, w := range result.Warnings {
		log.Warn("%s", w.Error())
	}
	if cfg.StrictMode && len(result.Warnings) > 0 {
		return fmt.Errorf("compiling pipeline: %d warning(s) are fatal in strict mode", len(result.Warnings))
	}

	output := opts.Output
	if output == "" {
		output = pipeline.Name + "." + cfg.OutputFormat
	}
	if err := pack.Write(result.Manifest, output); err != nil {
		return fmt.Errorf("packaging manifest: %w", err)
	}
	log.Info("wrote %s", output)
	return nil
}

func runFmt(path string) error {
	pipeline, err := load.File(path)
	if err != nil {
		return fmt.Errorf("loading pipeline description: %w", err)
	}
	out, err := yaml.Marshal(pipeline)
	if err != nil {
		return fmt.Errorf("re-marshaling pipeline description: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func diffFiles(a, b string) (string, bool, error) {
	from, to, err := ytbx.LoadFiles(a, b)
	if err != nil {
		return "", false, err
	}

	report, err := dyff.CompareInputFiles(from, to)
	if err != nil {
		return "", false, err
	}

	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: false,
		NoTableStyle:      false,
		OmitHeader:        true,
	}

	var buf bytes.Buffer
	out := bufio.NewWriter(&buf)
	if err := reportWriter.WriteReport(out); err != nil {
		return "", false, err
	}
	out.Flush()

	return buf.String(), len(report.Diffs) > 0, nil
}
