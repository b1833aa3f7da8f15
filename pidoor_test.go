package pidoor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudkucooland/pidoor/accessory"
	"github.com/cloudkucooland/pidoor/config"
	"github.com/cloudkucooland/pidoor/door"
	"github.com/cloudkucooland/pidoor/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapAndAdd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := &config.Config{RelayTimeout: 1}
	BootstrapPlatforms(c)
	assert.Same(t, c, config.Get())

	for _, name := range []string{"HomeControl", "HTTP", door.Name} {
		_, ok := platform.GetPlatform(name)
		assert.True(t, ok, name)
	}

	assert.Error(t, AddAccessory(&accessory.TFAccessory{Name: "noplatform"}))
	assert.Error(t, AddAccessory(&accessory.TFAccessory{Name: "tradfri", Platform: "Tradfri"}))

	a, err := accessory.Parse([]byte(`{"url": "`+srv.URL+`", "secret": "x"}`), "front", ".json")
	require.NoError(t, err)
	require.NoError(t, AddAccessory(a))

	_, ok := door.GetLock("front")
	assert.True(t, ok)
}
