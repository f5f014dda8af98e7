package presenter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/presenter/models"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

const reportTimestampLayout = "20060102_150405"

// Write renders the document in every configured format and returns the paths of the report files created.
// Outputs without a file go to <reportDir>/report_<timestamp>.<ext>, except table output which is
// published to the terminal.
func (c Config) Write(doc models.Document, reportDir string) (paths []string, errs error) {
	for _, o := range c.outputs {
		pres := GetPresenter(o.format, c, doc)
		if pres == nil {
			errs = multierror.Append(errs, fmt.Errorf("unsupported output format %q", o.format))
			continue
		}

		buf := &bytes.Buffer{}
		if err := pres.Present(buf); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("unable to render %s report: %w", o.format, err))
			continue
		}

		path := c.destination(o, doc, reportDir)
		if path == "" {
			bus.Report(o.format.String(), buf.String())
			continue
		}

		if err := writeFile(path, buf.Bytes()); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		log.Infof("%s report written to %q", o.format, path)
		paths = append(paths, path)
	}
	return paths, errs
}

// destination is the file a report is written to, empty for terminal output.
func (c Config) destination(o output, doc models.Document, reportDir string) string {
	if o.path != "" {
		expanded, err := homedir.Expand(o.path)
		if err != nil {
			log.Warnf("could not expand given report path=%q: %+v", o.path, err)
			return o.path
		}
		return expanded
	}
	if o.format == TableFormat {
		return ""
	}
	name := fmt.Sprintf("report_%s.%s", doc.Timestamp.Format(reportTimestampLayout), o.format.Extension(c.TemplateFilePath))
	return filepath.Join(reportDir, name)
}

func writeFile(path string, contents []byte) error {
	// create any missing subdirectories
	if dir := filepath.Dir(path); dir != "" {
		s, err := os.Stat(dir)
		switch {
		case err != nil:
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("unable to create report directory: %w", err)
			}
		case !s.IsDir():
			return fmt.Errorf("report path does not contain a valid directory: %s", path)
		}
	}
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return fmt.Errorf("unable to create report file: %w", err)
	}
	return nil
}
