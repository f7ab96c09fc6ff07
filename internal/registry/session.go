package registry

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"k8s.io/klog/v2"
)

// NewSession builds an SDK session for a named profile and region. Retries are
// disabled so every failure surfaces to the caller on the first attempt.
var NewSession = func(profile, region string) (*session.Session, error) {
	return session.NewSessionWithOptions(session.Options{
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
		Config: aws.Config{
			Region:     aws.String(region),
			MaxRetries: aws.Int(0),
		},
	})
}

type sessionKey struct {
	profile string
	region  string
}

// sessionCache keeps one session per (profile, region).
type sessionCache struct {
	mu       sync.Mutex
	sessions map[sessionKey]*session.Session
}

func newSessionCache() *sessionCache {
	return &sessionCache{sessions: make(map[sessionKey]*session.Session)}
}

func (c *sessionCache) get(profile, region string) (*session.Session, error) {
	key := sessionKey{profile: profile, region: region}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sess, ok := c.sessions[key]; ok {
		return sess, nil
	}
	sess, err := NewSession(profile, region)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("Created AWS session profile=%q region=%s", profile, region)
	c.sessions[key] = sess
	return sess, nil
}
