package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeRateAPI_InvertsRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/latest/BRL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"BRL","rates":{"BRL":1,"USD":0.2,"EUR":0.16,"GBP":0.125}}`))
	}))
	defer srv.Close()

	quotes, err := NewExchangeRateAPI(srv.URL+"/").Fetch(context.Background(), "BRL", []string{"USD", "EUR", "GBP"})
	require.NoError(t, err)

	assert.Equal(t, "5", quotes["USD"].String())
	assert.Equal(t, "6.25", quotes["EUR"].String())
	assert.Equal(t, "8", quotes["GBP"].String())
}

func TestExchangeRateAPI_MissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"BRL","rates":{"USD":0.2}}`))
	}))
	defer srv.Close()

	_, err := NewExchangeRateAPI(srv.URL).Fetch(context.Background(), "BRL", []string{"USD", "JPY"})
	assert.ErrorContains(t, err, "JPY")
}

func TestExchangeRateAPI_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewExchangeRateAPI(srv.URL).Fetch(context.Background(), "BRL", []string{"USD"})
	assert.ErrorContains(t, err, "429")
}

const ecbFeed = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<Cube>
		<Cube time="2026-10-14">
			<Cube currency="USD" rate="1.25"/>
			<Cube currency="GBP" rate="0.8"/>
			<Cube currency="BRL" rate="6.5"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

func TestECB_CrossesThroughEUR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ecbFeed))
	}))
	defer srv.Close()

	quotes, err := NewECB(srv.URL).Fetch(context.Background(), "BRL", []string{"USD", "EUR", "GBP"})
	require.NoError(t, err)

	// 6.5 BRL per EUR, 1.25 USD per EUR: one USD buys 5.2 BRL
	assert.Equal(t, "5.2", quotes["USD"].String())
	assert.Equal(t, "6.5", quotes["EUR"].String())
	assert.Equal(t, "8.125", quotes["GBP"].String())
}

func TestECB_UnknownBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ecbFeed))
	}))
	defer srv.Close()

	_, err := NewECB(srv.URL).Fetch(context.Background(), "ARS", []string{"USD"})
	assert.ErrorContains(t, err, "ARS")
}

func TestParseECB_Malformed(t *testing.T) {
	_, err := parseECB([]byte("<Envelope><Cube/></Envelope>"))
	assert.ErrorContains(t, err, "no rate data")

	_, err = parseECB([]byte(`<Cube><Cube currency="USD" rate="abc"/></Cube>`))
	assert.ErrorContains(t, err, "USD")

	_, err = parseECB([]byte("not xml <"))
	assert.Error(t, err)
}
