package driver

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/kudryavchik/semantic/pkg/concrete"
	"github.com/kudryavchik/semantic/pkg/eval"
	"github.com/kudryavchik/semantic/pkg/interp"
	"github.com/kudryavchik/semantic/pkg/runtime"
	"github.com/kudryavchik/semantic/pkg/term"
	"github.com/kudryavchik/semantic/pkg/typedomain"
)

// Session evaluates a bundle's documents in manifest order against one
// machine, so earlier documents' global bindings are visible to later ones.
type Session struct {
	Domain runtime.Domain
	Stdout io.Writer
	Log    *slog.Logger

	// Recover is installed as the machine's recovery hook when set.
	Recover func(err error) (runtime.Value, bool)
}

// DomainByName resolves the shipped domains.
func DomainByName(name string) (runtime.Domain, error) {
	switch name {
	case "concrete", "":
		return concrete.New(), nil
	case "type":
		return typedomain.New(), nil
	default:
		return nil, fmt.Errorf("driver: unknown domain %q", name)
	}
}

// NewAnalysisSession is a session over the type domain that continues past
// failed eliminations by substituting the unknown type.
func NewAnalysisSession(stdout io.Writer, log *slog.Logger) *Session {
	return &Session{
		Domain: typedomain.New(),
		Stdout: stdout,
		Log:    log,
		Recover: func(error) (runtime.Value, bool) {
			return typedomain.Top(), true
		},
	}
}

// Run evaluates every document and returns the entry document's final value.
func (s *Session) Run(bundle *Bundle) (runtime.Value, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	domain := s.Domain
	if domain == nil {
		domain = concrete.New()
	}

	terms := term.NewStore()
	machine := eval.NewMachine(domain, runtime.NewStoreHeap(), terms)
	if s.Stdout != nil {
		machine.Stdout = s.Stdout
	}
	machine.Recover = s.Recover
	evaluator := interp.New(terms)
	if err := evaluator.Attach(machine); err != nil {
		return nil, err
	}

	var last runtime.Value = domain.Unit()
	for _, doc := range bundle.Documents {
		machine.Origin = doc.Name
		log.Debug("evaluating document", "bundle", bundle.Name, "document", doc.Name, "domain", domain.Name())
		for _, node := range doc.Terms {
			v, err := machine.Run(evaluator.Eval(node))
			if err != nil {
				return nil, err
			}
			if doc == bundle.Entry {
				last = v
			}
		}
	}
	return last, nil
}
