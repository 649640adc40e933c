package interact

import "sync"

// Scripted replays queued answers and records every message it was shown.
// An exhausted queue declines confirmations and cancels prompts.
type Scripted struct {
	mu       sync.Mutex
	confirms []bool
	answers  []*string

	Confirmations []string
	Prompts       []string
	Notices       []string
}

// NewScripted creates a Scripted interactor
func NewScripted() *Scripted {
	return &Scripted{}
}

// QueueConfirm adds answers for the next Confirm calls
func (s *Scripted) QueueConfirm(answers ...bool) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirms = append(s.confirms, answers...)
	return s
}

// QueueAnswer adds the answer for the next PromptText call
func (s *Scripted) QueueAnswer(answer string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, &answer)
	return s
}

// QueueCancel makes the next PromptText call return cancelled
func (s *Scripted) QueueCancel() *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, nil)
	return s
}

func (s *Scripted) Confirm(message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Confirmations = append(s.Confirmations, message)
	if len(s.confirms) == 0 {
		return false
	}
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer
}

func (s *Scripted) PromptText(message, def string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, message)
	if len(s.answers) == 0 {
		return "", false
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	if answer == nil {
		return "", false
	}
	return *answer, true
}

func (s *Scripted) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notices = append(s.Notices, message)
}
