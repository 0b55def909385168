package domain

import (
	"encoding/json"
	"time"
)

// Role selects which operations a user may perform and which dashboard
// the client shows after login.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RolePlayer Role = "PLAYER"
)

// QuestionsPerTournament is the fixed question count the platform assigns
// to every tournament; attempt scores range 0..QuestionsPerTournament.
const QuestionsPerTournament = 10

// Identity is the authenticated user as issued by the platform at login.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

const dateLayout = "2006-01-02"

// Date is a calendar day as the platform serializes it ("2006-01-02").
type Date struct {
	time.Time
}

// ParseDate parses a day in the platform's wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Tournament is a read-only copy of a tournament owned by the remote
// service; the client refreshes it on demand and never mutates it locally.
type Tournament struct {
	ID              int64  `json:"id"`
	Creator         string `json:"creator"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Difficulty      string `json:"difficulty"`
	StartDate       Date   `json:"startDate"`
	EndDate         Date   `json:"endDate"`
	MinPassingScore int    `json:"minPassingScore"` // percent, 0..100
	Likes           int    `json:"likes"`
}

// Attempt is one player's play-through of one tournament.
type Attempt struct {
	ID           int64 `json:"id"`
	TournamentID int64 `json:"tournamentId"`
	Completed    bool  `json:"completed"`
	Score        int   `json:"score"`
}

// AnswerOption identifies one of the four choices of a question.
type AnswerOption string

const (
	AnswerA AnswerOption = "A"
	AnswerB AnswerOption = "B"
	AnswerC AnswerOption = "C"
	AnswerD AnswerOption = "D"
)

// Valid reports whether a is one of A..D.
func (a AnswerOption) Valid() bool {
	switch a {
	case AnswerA, AnswerB, AnswerC, AnswerD:
		return true
	}
	return false
}

// Question holds the text and the four options of a multiple-choice
// question. CorrectAnswer is only populated on admin-facing endpoints.
type Question struct {
	QuestionText  string       `json:"questionText"`
	OptionA       string       `json:"optionA"`
	OptionB       string       `json:"optionB"`
	OptionC       string       `json:"optionC"`
	OptionD       string       `json:"optionD"`
	CorrectAnswer AnswerOption `json:"correctAnswer,omitempty"`
}

// OptionText returns the text of the given option.
func (q Question) OptionText(opt AnswerOption) string {
	switch opt {
	case AnswerA:
		return q.OptionA
	case AnswerB:
		return q.OptionB
	case AnswerC:
		return q.OptionC
	case AnswerD:
		return q.OptionD
	}
	return ""
}

// TournamentQuestion is one question of a tournament's ordered sequence;
// QuestionOrder defines presentation order during an attempt.
type TournamentQuestion struct {
	ID            int64    `json:"id"`
	QuestionOrder int      `json:"questionOrder"`
	Question      Question `json:"question"`
}

// AnswerFeedback is the per-answer result returned by the platform. It is
// ephemeral: the client discards it when advancing to the next question.
type AnswerFeedback struct {
	IsCorrect     bool         `json:"isCorrect"`
	CorrectAnswer AnswerOption `json:"correctAnswer"`
	Feedback      string       `json:"feedback"`
}

// PlayerStats aggregates a player's completed attempts.
type PlayerStats struct {
	TournamentsPlayed int     `json:"tournamentsPlayed"`
	AverageScore      float64 `json:"averageScore"`
	BestScore         int     `json:"bestScore"`
	TotalPoints       int     `json:"totalPoints"`
}

// PlayerScore is one row of a tournament scoreboard.
type PlayerScore struct {
	PlayerName  string    `json:"playerName"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// Scoreboard summarizes all completed attempts of one tournament.
type Scoreboard struct {
	TournamentName string        `json:"tournamentName"`
	Likes          int           `json:"likes"`
	TotalPlayers   int64         `json:"totalPlayers"`
	AverageScore   float64       `json:"averageScore"`
	Scores         []PlayerScore `json:"scores"`
}
