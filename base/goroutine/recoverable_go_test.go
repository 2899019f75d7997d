package goroutine

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type recoverableGoSuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(recoverableGoSuite))
}

func (s *recoverableGoSuite) TestCleanExitClosesChannel() {
	done := make(chan struct{})
	ch := RecoverableGo(func() {
		close(done)
	})
	<-done
	ev, ok := <-ch
	s.Nil(ev)
	s.False(ok)
}

func (s *recoverableGoSuite) TestPanicIsRecovered() {
	recovered := false
	ch := RecoverableGo(func() {
		panic("boom")
	}, WithAfterRecovered(func(p interface{}, stack []byte) {
		recovered = true
	}))
	ev := <-ch
	s.NotNil(ev)
	s.Equal("boom", ev.Panic)
	s.True(recovered)
	s.NotEmpty(ev.Stack)
}
