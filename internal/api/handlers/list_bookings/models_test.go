package list_bookings

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToServiceRequest(t *testing.T) {
	req, err := ToServiceRequest(url.Values{
		"status": {"approved"},
		"paid":   {"false"},
		"area":   {"parking3"},
		"limit":  {"20"},
	})
	require.NoError(t, err)

	require.NotNil(t, req.Status)
	assert.Equal(t, "approved", *req.Status)
	require.NotNil(t, req.IsPaid)
	assert.False(t, *req.IsPaid)
	require.NotNil(t, req.Area)
	assert.Nil(t, req.VehicleClass)
	assert.Equal(t, 20, req.Limit)
}

func TestToServiceRequest_Empty(t *testing.T) {
	req, err := ToServiceRequest(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, req.Status)
	assert.Nil(t, req.IsPaid)
	assert.Zero(t, req.Limit)
}

func TestToServiceRequest_Invalid(t *testing.T) {
	_, err := ToServiceRequest(url.Values{"paid": {"maybe"}})
	assert.Error(t, err)

	_, err = ToServiceRequest(url.Values{"limit": {"ten"}})
	assert.Error(t, err)
}
