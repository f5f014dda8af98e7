package rebuild

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

// PatchSet is the YAML document given to the patch command:
//
//	patches:
//	  - file: smali/smali/com/example/Check.smali
//	    find: "const/4 v0, 0x1"
//	    replace: "const/4 v0, 0x0"
//	    count: 1
type PatchSet struct {
	Patches []Patch `yaml:"patches"`
}

// Patch replaces text in every project file matching the File glob (relative to the project root).
type Patch struct {
	File    string `yaml:"file"`
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
	// Regex treats Find as a regular expression; Replace may then reference groups ($1).
	Regex bool `yaml:"regex"`
	// Count, when non-zero, is the exact number of replacements the patch must make.
	Count int `yaml:"count"`

	pattern *regexp.Regexp
}

// PatchResult reports what a patch set changed (or would change, for a dry run).
type PatchResult struct {
	DryRun  bool         `json:"dryRun"`
	Changes []FileChange `json:"changes"`
}

type FileChange struct {
	Path         string `json:"path"`
	Replacements int    `json:"replacements"`
	Diff         string `json:"diff,omitempty"`
}

// Files lists the project relative paths that were touched.
func (r PatchResult) Files() []string {
	var out []string
	for _, c := range r.Changes {
		out = append(out, c.Path)
	}
	return out
}

// LoadPatchSet reads and validates a patch set file.
func LoadPatchSet(fs afero.Fs, path string) (*PatchSet, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("unable to read patch file: %w", err)
	}
	return ParsePatchSet(contents)
}

func ParsePatchSet(contents []byte) (*PatchSet, error) {
	var set PatchSet
	if err := yaml.UnmarshalStrict(contents, &set); err != nil {
		return nil, fmt.Errorf("unable to parse patch file: %w", err)
	}
	if len(set.Patches) == 0 {
		return nil, fmt.Errorf("patch file declares no patches")
	}

	var errs error
	for i := range set.Patches {
		p := &set.Patches[i]
		switch {
		case p.File == "":
			errs = multierror.Append(errs, fmt.Errorf("patch %d: file is required", i+1))
		case !validGlob(p.File):
			errs = multierror.Append(errs, fmt.Errorf("patch %d: bad file glob %q", i+1, p.File))
		}
		if p.Find == "" {
			errs = multierror.Append(errs, fmt.Errorf("patch %d: find is required", i+1))
		}
		if p.Count < 0 {
			errs = multierror.Append(errs, fmt.Errorf("patch %d: count must not be negative", i+1))
		}
		if p.Regex && p.Find != "" {
			re, err := regexp.Compile(p.Find)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("patch %d: bad regex: %w", i+1, err))
				continue
			}
			p.pattern = re
		}
	}
	if errs != nil {
		return nil, errs
	}
	return &set, nil
}

func validGlob(glob string) bool {
	_, err := doublestar.Match(glob, "x")
	return err == nil
}

// apply returns the patched text and the number of replacements made.
func (p Patch) apply(text string) (string, int) {
	if p.pattern != nil {
		n := len(p.pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			return text, 0
		}
		return p.pattern.ReplaceAllString(text, p.Replace), n
	}
	n := strings.Count(text, p.Find)
	if n == 0 {
		return text, 0
	}
	return strings.ReplaceAll(text, p.Find, p.Replace), n
}

func (p Patch) describe(i int) string {
	return fmt.Sprintf("patch %d (%s)", i+1, p.File)
}

// Patch applies the patch set to the project. Every patch must match (exactly Count times when Count is set),
// otherwise nothing is written. A dry run only reports the diffs.
func Patch(ws *workspace.Workspace, set *PatchSet, dryRun bool) (*PatchResult, error) {
	fs := ws.Fs()

	files, err := projectFiles(fs, ws.Root)
	if err != nil {
		return nil, err
	}

	original := map[string]string{}
	patched := map[string]string{}
	replacements := map[string]int{}

	var errs error
	for i, p := range set.Patches {
		total := 0
		for _, rel := range files {
			if ok, _ := doublestar.Match(p.File, rel); !ok {
				continue
			}
			text, seen := patched[rel]
			if !seen {
				contents, err := afero.ReadFile(fs, filepath.Join(ws.Root, filepath.FromSlash(rel)))
				if err != nil {
					return nil, fmt.Errorf("unable to read %q: %w", rel, err)
				}
				text = string(contents)
				original[rel] = text
			}
			updated, n := p.apply(text)
			patched[rel] = updated
			replacements[rel] += n
			total += n
		}

		switch {
		case total == 0:
			errs = multierror.Append(errs, fmt.Errorf("%s: %q not found", p.describe(i), p.Find))
		case p.Count > 0 && total != p.Count:
			errs = multierror.Append(errs, fmt.Errorf("%s: expected %d replacements, found %d", p.describe(i), p.Count, total))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("patch set not applied: %w", errs)
	}

	result := &PatchResult{DryRun: dryRun}
	var touched []string
	for rel, text := range patched {
		if text != original[rel] {
			touched = append(touched, rel)
		}
	}
	sort.Strings(touched)

	for _, rel := range touched {
		result.Changes = append(result.Changes, FileChange{
			Path:         rel,
			Replacements: replacements[rel],
			Diff:         unifiedDiff(rel, original[rel], patched[rel]),
		})
	}

	if dryRun {
		return result, nil
	}

	for _, rel := range touched {
		path := filepath.Join(ws.Root, filepath.FromSlash(rel))
		mode := os.FileMode(0644)
		if info, err := fs.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
		if err := afero.WriteFile(fs, path, []byte(patched[rel]), mode); err != nil {
			return result, fmt.Errorf("unable to write %q: %w", rel, err)
		}
		log.Debugf("patched %q", rel)
	}
	log.Infof("patched %d file(s) in %q", len(touched), ws.Root)
	return result, nil
}

// projectFiles lists the slash separated paths of every regular file in the project, excluding the original and
// rebuilt APKs.
func projectFiles(fs afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel == workspace.OriginalDir || rel == workspace.DistDir {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list project files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
