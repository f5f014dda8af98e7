package analysis

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/scylladb/go-set/strset"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/workspace"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

type sourceFile struct {
	path string
	// rel is relative to the scanned root, using forward slashes
	rel  string
	lang Language
	// excluded files are only searched for permission usage
	excluded bool
}

type fileResult struct {
	findings []finding.Finding
	skipped  bool
	excluded bool
	issue    string
}

// usageChunkSize is the read size when searching files too large to analyze for permission usage.
const usageChunkSize = 64 << 10

type codeScanner struct {
	fs       afero.Fs
	patterns *Patterns
	deep     bool
	maxSize  int64
	workers  int
	tracker  *tracker
	// tokens are searched in java sources to decide which permissions are used
	tokens []string
	used   *strset.Set
	lock   sync.Mutex
}

func (s *codeScanner) scan(ctx context.Context, ws *workspace.Workspace) (CodeResult, error) {
	result := CodeResult{
		Roots:    []string{},
		Findings: []finding.Finding{},
	}

	var roots []struct {
		dir  string
		lang Language
	}
	hasJava := ws.HasJava()
	if hasJava {
		roots = append(roots, struct {
			dir  string
			lang Language
		}{workspace.JavaDir, Java})
	}
	if s.deep || !hasJava {
		roots = append(roots, struct {
			dir  string
			lang Language
		}{workspace.SmaliDir, Smali})
	}

	var files []sourceFile
	for _, r := range roots {
		found, err := s.collect(ws.Path(r.dir), r.lang)
		if err != nil {
			result.Issues = append(result.Issues, fmt.Sprintf("unable to list %s sources: %v", r.dir, err))
			continue
		}
		if len(found) > 0 {
			result.Roots = append(result.Roots, r.dir)
		}
		files = append(files, found...)
	}

	s.tracker.files.SetTotal(int64(len(files)))
	log.Debugf("scanning %d source files in %v", len(files), result.Roots)

	grp, ctx := errgroup.WithContext(ctx)
	queue := produceSourceFiles(ctx, grp, files)
	results := make(chan fileResult)

	workers := int32(s.workers)
	for workerNum := int32(0); workerNum < int32(s.workers); workerNum++ {
		grp.Go(func() error {
			defer func() {
				if atomic.AddInt32(&workers, -1) == 0 {
					close(results)
				}
			}()

			for f := range queue {
				r := s.scanFile(f)
				s.tracker.files.Increment()
				s.tracker.add(r.findings...)

				select {
				case <-ctx.Done():
					return ctx.Err()
				case results <- r:
				}
			}
			return nil
		})
	}

	grp.Go(func() error {
		for r := range results {
			switch {
			case r.issue != "":
				result.Issues = append(result.Issues, r.issue)
			case r.excluded:
				// neither analyzed nor skipped
			case r.skipped:
				result.FilesSkipped++
			default:
				result.FilesAnalyzed++
				result.Findings = append(result.Findings, r.findings...)
			}
		}
		return nil
	})

	if err := grp.Wait(); err != nil {
		return result, fmt.Errorf("code analysis interrupted: %w", err)
	}
	sort.Sort(finding.ByElements(result.Findings))
	sort.Strings(result.Issues)
	return result, nil
}

func produceSourceFiles(ctx context.Context, g *errgroup.Group, files []sourceFile) chan sourceFile {
	queue := make(chan sourceFile)
	g.Go(func() error {
		defer close(queue)
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case queue <- f:
			}
		}
		return nil
	})
	return queue
}

func (s *codeScanner) collect(root string, lang Language) ([]sourceFile, error) {
	if ok, err := afero.DirExists(s.fs, root); err != nil || !ok {
		return nil, err
	}

	ext := "." + string(lang)
	var files []sourceFile
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Debugf("unable to walk %q: %+v", path, err)
			return nil
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		excluded := s.patterns.excluded(rel)
		if excluded && lang != Java {
			return nil
		}
		files = append(files, sourceFile{path: path, rel: rel, lang: lang, excluded: excluded})
		return nil
	})
	return files, err
}

func (s *codeScanner) scanFile(f sourceFile) fileResult {
	info, err := s.fs.Stat(f.path)
	if err != nil {
		return fileResult{issue: fmt.Sprintf("unable to stat %s: %v", f.rel, err)}
	}
	if f.excluded || info.Size() > s.maxSize {
		if !f.excluded {
			log.Debugf("skipping %s (%d bytes)", f.rel, info.Size())
		}
		// permissions referenced only here are still used by the application
		if f.lang == Java {
			if err := s.searchUsage(f.path); err != nil {
				return fileResult{issue: fmt.Sprintf("unable to read %s: %v", f.rel, err)}
			}
		}
		return fileResult{skipped: !f.excluded, excluded: f.excluded}
	}

	data, err := afero.ReadFile(s.fs, f.path)
	if err != nil {
		return fileResult{issue: fmt.Sprintf("unable to read %s: %v", f.rel, err)}
	}
	content := string(data)

	if f.lang == Java {
		s.recordUsage(content)
	}

	return fileResult{findings: s.match(f, content)}
}

func (s *codeScanner) match(f sourceFile, content string) []finding.Finding {
	var findings []finding.Finding
	lines := strings.Split(content, "\n")

	for _, rule := range s.patterns.LineRules {
		if !rule.applies(f.lang, f.rel, s.deep) {
			continue
		}
		for i, line := range lines {
			m := rule.pattern.FindString(line)
			if m == "" {
				continue
			}
			if rule.exclude != nil && rule.exclude.MatchString(m) {
				continue
			}
			findings = append(findings, rule.newFinding(finding.CodeCategory, f.rel, i+1, strings.TrimSpace(line), m))
		}
	}

	for _, rule := range s.patterns.FileRules {
		if !rule.applies(f.lang, f.rel, s.deep) || !rule.matches(content) {
			continue
		}
		line, snippet := locate(lines, rule.Anchor)
		findings = append(findings, rule.newFinding(finding.CodeCategory, f.rel, line, snippet, rule.Anchor))
	}

	return findings
}

func (r FileRule) matches(content string) bool {
	for _, token := range r.Require {
		if !strings.Contains(content, token) {
			return false
		}
	}
	for _, token := range r.Absent {
		if strings.Contains(content, token) {
			return false
		}
	}
	return true
}

// locate returns the 1-based line number and trimmed text of the first line containing the token.
func locate(lines []string, token string) (int, string) {
	for i, l := range lines {
		if strings.Contains(l, token) {
			return i + 1, strings.TrimSpace(l)
		}
	}
	return 0, ""
}

func (s *codeScanner) recordUsage(content string) {
	var found []string
	for _, t := range s.tokens {
		if strings.Contains(content, t) {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		return
	}
	s.lock.Lock()
	s.used.Add(found...)
	s.lock.Unlock()
}

// searchUsage records permission usage in a java file without loading it whole. Consecutive
// chunks overlap by one byte less than the longest token so no match spans a boundary unseen.
func (s *codeScanner) searchUsage(path string) error {
	var longest int
	for _, t := range s.tokens {
		if len(t) > longest {
			longest = len(t)
		}
	}
	if longest == 0 {
		return nil
	}

	fh, err := s.fs.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	reader := bufio.NewReaderSize(fh, usageChunkSize)
	chunk := make([]byte, usageChunkSize)
	window := make([]byte, 0, usageChunkSize+longest)
	for {
		n, err := io.ReadFull(reader, chunk)
		window = append(window, chunk[:n]...)
		s.recordUsage(string(window))
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if keep := longest - 1; len(window) > keep {
			window = append(window[:0], window[len(window)-keep:]...)
		}
	}
}

func maxParallelism() int {
	maxProcs := runtime.GOMAXPROCS(0)
	numCPU := runtime.NumCPU()
	if maxProcs < numCPU {
		return maxProcs
	}
	return numCPU
}
