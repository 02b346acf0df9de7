package models

// ClassroomSummary aggregates Student Usage rows for one classroom.
type ClassroomSummary struct {
	Name              string  `json:"name"`
	Students          int     `json:"students"`
	StudentsUsed      int     `json:"students_used"`
	Usage             float64 `json:"usage"`
	Listen            int     `json:"listen"`
	Read              int     `json:"read"`
	Quiz              int     `json:"quiz"`
	Interactivity     int     `json:"interactivity"`
	PracticeRecording int     `json:"practice_recording"`
}

// SchoolSummary aggregates Student Usage rows across every classroom.
type SchoolSummary struct {
	AllTeachers     int `json:"all_teachers"`
	AllStudents     int `json:"all_students"`
	TotalListen     int `json:"total_listen"`
	TotalRead       int `json:"total_read"`
	TotalQuizzes    int `json:"total_quizzes"`
	TotalActivities int `json:"total_activities"`
}

type SkillData struct {
	Name     string  `json:"name"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

type ClassroomSkills struct {
	Classroom string      `json:"classroom"`
	Skills    []SkillData `json:"skills"`
}

// SkillAverage is the mean accuracy of one skill name across classrooms.
type SkillAverage struct {
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"`
	Samples  int     `json:"samples"`
}

// AccuracyDistribution buckets skills: high >= 80, medium >= 60, low below.
type AccuracyDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type SkillsSummary struct {
	TotalClassrooms int                  `json:"total_classrooms"`
	TotalCorrect    int                  `json:"total_correct"`
	TotalQuestions  int                  `json:"total_questions"`
	OverallAccuracy float64              `json:"overall_accuracy"`
	SkillAverages   []SkillAverage       `json:"skill_averages"`
	Distribution    AccuracyDistribution `json:"distribution"`
}

type TopReader struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ClassroomTopReaders holds at most three readers with a positive score.
type ClassroomTopReaders struct {
	Name     string      `json:"name"`
	Students []TopReader `json:"students"`
}

type LevelUpStudent struct {
	Student  string  `json:"student"`
	Level    string  `json:"level"`
	Progress float64 `json:"progress"`
}

type ClassroomLevelUp struct {
	Classroom string           `json:"classroom"`
	Students  []LevelUpStudent `json:"students"`
}

// ClassroomComparison holds parallel chart series indexed by Labels.
type ClassroomComparison struct {
	Labels []string `json:"labels"`
	Listen []int    `json:"listen"`
	Read   []int    `json:"read"`
	Quiz   []int    `json:"quiz"`
}

// DashboardOverview composes every summary view into one payload.
type DashboardOverview struct {
	Institution  string                `json:"institution"`
	Period       string                `json:"period"`
	DateRange    string                `json:"date_range"`
	LatestReport string                `json:"latest_report,omitempty"`
	School       *SchoolSummary        `json:"school,omitempty"`
	Classrooms   []ClassroomSummary    `json:"classrooms,omitempty"`
	Skills       *SkillsSummary        `json:"skills,omitempty"`
	TopReaders   []ClassroomTopReaders `json:"top_readers,omitempty"`
	LevelUp      []ClassroomLevelUp    `json:"level_up,omitempty"`
	Comparison   *ClassroomComparison  `json:"comparison,omitempty"`
}

// OwnerActivity counts the files and rows one owner exported.
type OwnerActivity struct {
	Owner string `json:"owner"`
	Files int    `json:"files"`
	Rows  int    `json:"rows"`
}

// ActivityReport summarises an Assignment or Assessment export set.
type ActivityReport struct {
	ReportType ReportType      `json:"report_type"`
	TotalFiles int             `json:"total_files"`
	TotalRows  int             `json:"total_rows"`
	Owners     []OwnerActivity `json:"owners"`
}
