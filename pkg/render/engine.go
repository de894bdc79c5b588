package render

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/envconfig"
)

//go:embed templates
var templateTree embed.FS

const templateRoot = "templates"

// conditionalDirs maps a top-level artifact subtree to the Context
// predicate that gates whether it is written at all.
var conditionalDirs = map[string]func(Context) bool{
	"caddy":  Context.WantsCaddy,
	"backup": Context.WantsBackup,
}

var funcMap = template.FuncMap{
	"join": strings.Join,
	"instanceName": func(c Context) string {
		if c.InstanceName != "" {
			return c.InstanceName
		}
		return c.Environment
	},
}

// renamed maps a template's path (relative to templates/) to the
// output filename it produces, for the one case where the on-disk
// template name can't carry the real artifact name (embed.FS excludes
// dotfiles unless declared with an "all:" pattern).
var renamed = map[string]string{
	"docker-compose/env.tmpl": "docker-compose/.env",
}

// Options configures one render call.
type Options struct {
	OutputDir string
	Overwrite bool
}

// Render evaluates the template tree against cfg and instanceIP and
// writes the resulting artifact tree under opts.OutputDir.
func Render(cfg *envconfig.EnvironmentConfig, instanceIP string, opts Options) error {
	ctx := NewContext(cfg, instanceIP)
	return RenderContext(ctx, opts)
}

// RenderContext is Render's lower layer, taking an already-built
// Context. The render handler and validate's dry-run path both call
// Render, which builds the Context and delegates here.
func RenderContext(ctx Context, opts Options) error {
	if opts.OutputDir == "" {
		return deployerr.Render("(engine)", "output_dir", "output directory must not be empty")
	}

	if err := prepareOutputDir(opts); err != nil {
		return err
	}

	return fs.WalkDir(templateTree, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return deployerr.Io(p, err)
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(p, ".tmpl") {
			return nil
		}

		rel, err := filepath.Rel(templateRoot, p)
		if err != nil {
			return deployerr.Io(p, err)
		}
		rel = filepath.ToSlash(rel)

		topDir := strings.SplitN(rel, "/", 2)[0]
		if gate, ok := conditionalDirs[topDir]; ok && !gate(ctx) {
			return nil
		}

		if skip, err := skipProviderVariant(rel, ctx); err != nil {
			return err
		} else if skip {
			return nil
		}

		return renderOne(p, rel, ctx, opts.OutputDir)
	})
}

// skipProviderVariant drops the opentofu variables file that does not
// correspond to the config's active provider. The .auto.tfvars naming
// keeps the apply free of -var-file plumbing: tofu loads the file by
// convention.
func skipProviderVariant(rel string, ctx Context) (bool, error) {
	switch rel {
	case "opentofu/lxd.auto.tfvars.tmpl":
		return ctx.ProviderKind != "lxd", nil
	case "opentofu/hetzner.auto.tfvars.tmpl":
		return ctx.ProviderKind != "hetzner", nil
	default:
		return false, nil
	}
}

func renderOne(srcPath, rel string, ctx Context, outputDir string) error {
	raw, err := templateTree.ReadFile(srcPath)
	if err != nil {
		return deployerr.Io(srcPath, err)
	}

	tmpl, err := template.New(path.Base(rel)).Funcs(funcMap).Parse(string(raw))
	if err != nil {
		return deployerr.Render(rel, "", err.Error())
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return deployerr.Render(rel, "", missingPlaceholderReason(err))
	}

	outRel := rel[:len(rel)-len(".tmpl")]
	if mapped, ok := renamed[rel]; ok {
		outRel = mapped
	}
	outPath := filepath.Join(outputDir, filepath.FromSlash(outRel))

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return deployerr.Io(outPath, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return deployerr.Io(outPath, err)
	}
	return nil
}

func missingPlaceholderReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func prepareOutputDir(opts Options) error {
	info, err := os.Stat(opts.OutputDir)
	if os.IsNotExist(err) {
		return os.MkdirAll(opts.OutputDir, 0o755)
	}
	if err != nil {
		return deployerr.Io(opts.OutputDir, err)
	}
	if !info.IsDir() {
		return deployerr.Render("(engine)", "output_dir", opts.OutputDir+" exists and is not a directory")
	}

	entries, err := os.ReadDir(opts.OutputDir)
	if err != nil {
		return deployerr.Io(opts.OutputDir, err)
	}
	if len(entries) == 0 {
		return nil
	}
	if !opts.Overwrite {
		return deployerr.Render("(engine)", "output_dir", opts.OutputDir+" already exists; pass Overwrite to replace it")
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(opts.OutputDir, e.Name())); err != nil {
			return deployerr.Io(opts.OutputDir, err)
		}
	}
	return nil
}
