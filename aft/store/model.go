package store

import (
	"time"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

// AnalysisRecord is one completed analysis kept in the history database.
type AnalysisRecord struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time `gorm:"column:created_at;index" json:"createdAt"`
	Package     string    `gorm:"column:package;index" json:"package"`
	Version     string    `gorm:"column:version" json:"version"`
	SHA256      string    `gorm:"column:sha256" json:"sha256"`
	ProjectDir  string    `gorm:"column:project_dir" json:"projectDir"`
	ReportPaths []string  `gorm:"column:report_paths;serializer:json" json:"reportPaths"`
	RiskScore   int       `gorm:"column:risk_score" json:"riskScore"`
	Total       int       `gorm:"column:total" json:"total"`
	Critical    int       `gorm:"column:critical" json:"critical"`
	High        int       `gorm:"column:high" json:"high"`
	Medium      int       `gorm:"column:medium" json:"medium"`
	Low         int       `gorm:"column:low" json:"low"`
	Info        int       `gorm:"column:info" json:"info"`
}

func (AnalysisRecord) TableName() string {
	return "analyses"
}

// NewAnalysisRecord captures the outcome of an analysis over the given project.
func NewAnalysisRecord(pkg, version, sha256, projectDir string, summary finding.Summary, reports []string) AnalysisRecord {
	return AnalysisRecord{
		Package:     pkg,
		Version:     version,
		SHA256:      sha256,
		ProjectDir:  projectDir,
		ReportPaths: reports,
		RiskScore:   summary.RiskScore,
		Total:       summary.Total,
		Critical:    summary.Critical,
		High:        summary.High,
		Medium:      summary.Medium,
		Low:         summary.Low,
		Info:        summary.Info,
	}
}
