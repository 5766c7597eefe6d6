package factory

import (
	"encoding/base64"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/charsheet-go/internal/dependencies/mocks"
	"github.com/mcoot/charsheet-go/internal/services/auth"
	"github.com/mcoot/charsheet-go/internal/services/token"
	"github.com/mcoot/charsheet-go/internal/storage/memory"
	"github.com/mcoot/charsheet-go/internal/testutil"
)

// TestTokenSecret is the signing secret used by NewTestApp
var TestTokenSecret = base64.StdEncoding.EncodeToString([]byte("charsheet-test-signing-key"))

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		token.Config{Secret: TestTokenSecret},
		auth.Config{BcryptCost: bcrypt.MinCost},
		testutil.NopLogger(),
	)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
