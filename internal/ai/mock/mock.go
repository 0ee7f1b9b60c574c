package mock

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"jobmate/interview/internal/ai"
)

// questionPool holds the hand-written question templates per type. Questions
// are selected deterministically by session order, cycling through the pool.
var questionPool = map[string][]string{
	"technical": {
		"Walk me through how you would design a rate limiter for a public API used by a %s.",
		"Describe a time you had to debug a production incident. What tools did you reach for as a %s?",
		"How would you decide between a relational and a document database for a new %s project?",
		"Explain the difference between concurrency and parallelism, and where it matters in %s work.",
		"How do you approach testing a system with many external dependencies as a %s?",
	},
	"behavioral": {
		"Tell me about a time you disagreed with a teammate while working as a %s. How did you resolve it?",
		"Describe a project you are most proud of from your experience as a %s.",
		"Tell me about a time you missed a deadline. What did you learn as a %s?",
		"How do you prioritize when everything feels urgent in your role as a %s?",
		"Describe a situation where you received difficult feedback as a %s.",
	},
	"situational": {
		"Imagine you join a team as a %s and inherit a codebase with no tests. What do you do first?",
		"A stakeholder asks you, as a %s, to ship a feature you believe is not ready. How do you respond?",
		"Your service goes down an hour before a major launch. As the %s on call, walk me through your first fifteen minutes.",
		"You discover a colleague's change introduced a subtle data bug. As a %s, how do you handle it?",
	},
	"company_specific": {
		"Why do you want to work at %s, and what would you bring to the team?",
		"What do you know about %s's products, and how would you improve one of them?",
		"How do you see the role of a %s evolving at a company like this?",
	},
}

var strengthPool = []string{
	"Clear and structured communication",
	"Good use of concrete examples",
	"Solid grasp of the underlying concepts",
	"Answer stayed focused on the question",
	"Demonstrated ownership of outcomes",
}

var weaknessPool = []string{
	"Could quantify the impact of your work more",
	"Some technical details were glossed over",
	"The answer could be more concise",
	"Trade-offs were not discussed explicitly",
}

var suggestionPool = []string{
	"Use the STAR format to structure behavioral answers",
	"Lead with the conclusion, then explain the reasoning",
	"Mention measurable results where you can",
	"Practice summarizing complex topics in under a minute",
}

// Provider is the placeholder generator and evaluator. It reproduces the
// shipped scoring policy: communication in [7,9], technical and completeness
// in [6,8], overall the rounded mean of the three.
type Provider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New() *Provider {
	return &Provider{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSeed returns a provider with a fixed random source, used in tests.
func NewWithSeed(seed int64) *Provider {
	return &Provider{rng: rand.New(rand.NewSource(seed))}
}

func (p *Provider) GenerateQuestion(ctx context.Context, req *ai.QuestionRequest) (*ai.GeneratedQuestion, error) {
	if req.Order < 1 {
		return nil, &ai.ProviderError{
			Provider: "mock",
			Code:     ai.ErrCodeInvalidInput,
			Message:  fmt.Sprintf("question order must be positive, got %d", req.Order),
		}
	}
	types := req.QuestionTypes
	if len(types) == 0 {
		types = []string{"behavioral"}
	}

	// Question N uses the Nth requested type, then the Nth pool entry of
	// that type, both cycling. Deterministic for a given setup.
	qType := types[(req.Order-1)%len(types)]
	pool, ok := questionPool[qType]
	if !ok {
		return nil, &ai.ProviderError{
			Provider: "mock",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "unknown question type: " + qType,
		}
	}
	template := pool[(req.Order-1)%len(pool)]

	subject := req.JobRole
	if qType == "company_specific" && req.Company != "" && (req.Order-1)%len(pool) < 2 {
		// The first two company templates take the company name, the third
		// takes the role.
		subject = req.Company
	}

	return &ai.GeneratedQuestion{
		Text:       fmt.Sprintf(template, subject),
		Type:       qType,
		Difficulty: req.Difficulty,
	}, nil
}

func (p *Provider) EvaluateAnswer(ctx context.Context, req *ai.EvaluationRequest) (*ai.Evaluation, error) {
	if strings.TrimSpace(req.Answer) == "" {
		return nil, &ai.ProviderError{
			Provider: "mock",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "answer is empty",
		}
	}

	p.mu.Lock()
	communication := 7 + p.rng.Intn(3) // [7,9]
	technical := 6 + p.rng.Intn(3)     // [6,8]
	completeness := 6 + p.rng.Intn(3)  // [6,8]
	strengths := pick(p.rng, strengthPool, 2)
	weaknesses := pick(p.rng, weaknessPool, 2)
	suggestions := pick(p.rng, suggestionPool, 2)
	p.mu.Unlock()

	overall := int(math.Round(float64(communication+technical+completeness) / 3.0))

	return &ai.Evaluation{
		CommunicationScore: communication,
		TechnicalScore:     technical,
		CompletenessScore:  completeness,
		OverallScore:       overall,
		Strengths:          strengths,
		Weaknesses:         weaknesses,
		Suggestions:        suggestions,
	}, nil
}

func (p *Provider) GetProviderName() string { return "mock" }

// pick returns n distinct entries from pool in random order.
func pick(rng *rand.Rand, pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

func init() {
	ai.RegisterProvider("mock", func() (ai.Provider, error) {
		return New(), nil
	})
}
