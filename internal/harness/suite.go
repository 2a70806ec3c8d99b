package harness

import (
	"github.com/stretchr/testify/suite"
)

// Suite gives every test method of an embedding testify suite its own case.
// Env has to be set before suite.Run.
type Suite struct {
	suite.Suite
	Env  *Env
	Case *Case
}

func (s *Suite) SetupTest() {
	s.Case = Begin(s.T(), s.Env)
}

func (s *Suite) TearDownTest() {
	if s.Case != nil {
		s.Case.End()
	}
	s.Case = nil
}
