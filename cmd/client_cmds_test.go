package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pizzaPalace = `{"_id":1,"restaurantName":"Pizza Palace","city":"London","deliveryPrice":299,
	"estimatedDeliveryTime":30,"cuisines":["Pizza"],"menuItems":[{"_id":"item-a","name":"Margherita","price":1000}]}`

func fakeAPI(t *testing.T, checkout *map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/restaurant/1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pizzaPalace)
	})
	mux.HandleFunc("/api/order/checkout/create-checkout-session", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(checkout))
		io.WriteString(w, `{"url":"https://pay.example.com/s_1"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api", srv.URL, "--token", "tkn"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCartAndCheckout(t *testing.T) {
	t.Setenv("EATS_CART_DIR", t.TempDir())
	var sent map[string]any
	srv := fakeAPI(t, &sent)

	_, err := run(t, srv, "cart", "add", "1", "item-a")
	require.NoError(t, err)
	out, err := run(t, srv, "cart", "add", "1", "item-a")
	require.NoError(t, err)
	assert.Contains(t, out, "x2")
	assert.Contains(t, out, "£22.99")

	_, err = run(t, srv, "cart", "add", "1", "item-z")
	assert.Error(t, err)

	out, err = run(t, srv, "checkout", "1", "--name", "Sam", "--address", "1 High St", "--city", "London")
	require.NoError(t, err)
	assert.Contains(t, out, "https://pay.example.com/s_1")
	assert.Equal(t, "1", sent["restaurantId"])
	items := sent["cartItems"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].(map[string]any)["quantity"])

	_, err = run(t, srv, "cart", "clear", "1")
	require.NoError(t, err)
	out, err = run(t, srv, "cart", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "basket is empty")

	_, err = run(t, srv, "checkout", "1", "--name", "Sam", "--address", "1 High St", "--city", "London")
	assert.ErrorContains(t, err, "empty")
}

func TestOrdersStatus_RejectsUnknownStatus(t *testing.T) {
	var sent map[string]any
	srv := fakeAPI(t, &sent)
	_, err := run(t, srv, "orders", "status", "o-1", "teleported")
	assert.ErrorContains(t, err, "unknown status")
}
