package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"chat-client/session"
	"chat-client/transport"
	"chat-client/view"
)

type BaseChatSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseChatSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Header prints a colorized step banner in the test logs.
func (s *BaseChatSuite) Header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// OpenChat connects a participant to the relay and returns its view. The
// session runs until the test context is canceled.
func (s *BaseChatSuite) OpenChat(ctx context.Context, identity transport.Identity) *view.ChatView {
	log := logs.GetLoggerFromString(s.Config.LogLevel)
	trans := transport.NewWebSocket(s.Config.ChatAddr, log)
	sess := session.New(log, trans, identity, 200*time.Millisecond, time.Second)
	v := view.New(sess)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sess.Run(ctx)
	}()
	s.T().Cleanup(func() {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.T().Error("session never shut down")
		}
	})
	return v
}
