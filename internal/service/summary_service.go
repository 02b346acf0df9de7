package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/aggregator"
	"github.com/noah-isme/reading-reports-api/internal/models"
)

// SummaryService computes the analytical views. Every call re-reads the
// reports directory and shares no state with other calls; a view without
// source data is nil.
type SummaryService struct {
	locator reportLocator
	read    aggregator.TableReader
	logger  *zap.Logger
}

func NewSummaryService(locator reportLocator, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{locator: locator, read: tableReader(logger), logger: logger}
}

func (s *SummaryService) usage() *aggregator.UsageAccumulator {
	return aggregator.FoldUsage(s.locator.Locate(models.ReportTypeStudentUsage), s.read)
}

// SchoolSummary totals Student Usage across classrooms.
func (s *SummaryService) SchoolSummary() *models.SchoolSummary {
	return s.usage().School()
}

// ClassroomSummaries lists Student Usage totals per classroom.
func (s *SummaryService) ClassroomSummaries() []models.ClassroomSummary {
	classrooms := s.usage().Classrooms()
	if len(classrooms) == 0 {
		return nil
	}
	return classrooms
}

func (s *SummaryService) ClassroomComparison() *models.ClassroomComparison {
	return aggregator.Comparison(s.usage().Classrooms())
}

func (s *SummaryService) ClassroomSkills() []models.ClassroomSkills {
	classrooms := aggregator.FoldSkills(s.locator.Locate(models.ReportTypeSkill), s.read).Classrooms()
	if len(classrooms) == 0 {
		return nil
	}
	return classrooms
}

func (s *SummaryService) SkillsSummary() *models.SkillsSummary {
	return aggregator.FoldSkills(s.locator.Locate(models.ReportTypeSkill), s.read).Summary()
}

// TopReaders ranks the top three readers of each classroom.
func (s *SummaryService) TopReaders() []models.ClassroomTopReaders {
	classrooms := aggregator.FoldTopReaders(s.locator.Locate(models.ReportTypeStudentUsage), s.read).Classrooms()
	if len(classrooms) == 0 {
		return nil
	}
	return classrooms
}

func (s *SummaryService) LevelUp() []models.ClassroomLevelUp {
	classrooms := aggregator.FoldLevelUp(s.locator.Locate(models.ReportTypeLevelUp), s.read).Classrooms()
	if len(classrooms) == 0 {
		return nil
	}
	return classrooms
}

// Activity counts rows per owner for Assignment or Assessment exports.
func (s *SummaryService) Activity(t models.ReportType) *models.ActivityReport {
	return aggregator.FoldActivity(t, s.locator.Locate(t), s.read).Report()
}
