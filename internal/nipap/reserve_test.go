package nipap

import (
	"sync"
	"testing"

	"nipaputil/internal/ipamerr"
	"nipaputil/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAndReserveUsesDiscoveredPrefix(t *testing.T) {
	c, srv := newTestClient(t)
	withVRF(t, c, testVRFName, testRT)

	first, err := c.FindAndReservePrefix(testRT, "10.1.1.0/29", 32, models.PrefixHost, "host a", models.StatusAssigned)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.0/32", first.Prefix)
	assert.Equal(t, testRT, first.VRFRT)

	second, err := c.FindAndReservePrefix(testRT, "10.1.1.0/29", 32, models.PrefixHost, "host b", models.StatusAssigned)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1/32", second.Prefix)

	assert.Equal(t, 1, srv.PrefixCount(testRT, "10.1.1.0/32"))
	assert.Zero(t, srv.PrefixCount(testRT, "1.1.1.6/32"))
}

func TestFindAndReserveExhausted(t *testing.T) {
	c, _ := newTestClient(t)
	withVRF(t, c, testVRFName, testRT)

	for i := 0; i < 2; i++ {
		_, err := c.FindAndReservePrefix(testRT, "10.1.1.0/31", 32, models.PrefixHost, "", models.StatusAssigned)
		require.NoError(t, err)
	}
	p, err := c.FindAndReservePrefix(testRT, "10.1.1.0/31", 32, models.PrefixHost, "", models.StatusAssigned)
	assert.Nil(t, p)
	assert.True(t, ipamerr.IsNotFound(err))
}

func TestFindAndReserveLosesRace(t *testing.T) {
	c, srv := newTestClient(t)
	withVRF(t, c, testVRFName, testRT)

	won, err := c.FindAndReservePrefix(testRT, "10.1.1.0/29", 32, models.PrefixHost, "", models.StatusAssigned)
	require.NoError(t, err)

	// второй клиент успел найти тот же префикс до резервирования первым
	srv.StaleFree = []string{won.Prefix}
	_, err = c.FindAndReservePrefix(testRT, "10.1.1.0/29", 32, models.PrefixHost, "", models.StatusAssigned)
	require.Error(t, err)
	assert.Equal(t, ipamerr.KindDuplicate, ipamerr.KindOf(err))
	assert.Equal(t, 1, srv.PrefixCount(testRT, won.Prefix))
}

func TestFindAndReserveRejectsForeignPrefix(t *testing.T) {
	c, srv := newTestClient(t)
	withVRF(t, c, testVRFName, testRT)
	srv.StaleFree = []string{"192.0.2.1/32"}

	_, err := c.FindAndReservePrefix(testRT, "10.1.1.0/29", 32, models.PrefixHost, "", models.StatusAssigned)
	assert.ErrorIs(t, err, ipamerr.ErrRemote)
	assert.Zero(t, srv.PrefixCount(testRT, "192.0.2.1/32"))
}

func TestConcurrentFindAndReserve(t *testing.T) {
	c, _ := newTestClient(t)
	withVRF(t, c, testVRFName, testRT)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		won  = map[string]int{}
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.FindAndReservePrefix(testRT, "10.1.1.0/28", 32, models.PrefixHost, "", models.StatusAssigned)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			won[p.Prefix]++
		}()
	}
	wg.Wait()

	require.NotEmpty(t, won)
	for prefix, n := range won {
		assert.Equal(t, 1, n, "prefix %s reserved twice", prefix)
	}
	for _, err := range errs {
		assert.Equal(t, ipamerr.KindDuplicate, ipamerr.KindOf(err))
	}
}

func TestReserveParentPrefixIsIdempotent(t *testing.T) {
	c, srv := newTestClient(t)
	withVRF(t, c, testVRFName, testRT)

	first, err := c.ReserveParentPrefix("DEV", testRT, testPrefix24, models.PrefixReservation, models.StatusReserved, testDesc, []string{"tag1"})
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := c.ReserveParentPrefix("DEV", testRT, testPrefix24, models.PrefixReservation, models.StatusReserved, testDesc, []string{"tag1"})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, srv.PrefixCount(testRT, testPrefix24))
}

func TestReserveParentPrefixUnknownVRF(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.ReserveParentPrefix("DEV", testRT, testPrefix24, models.PrefixReservation, models.StatusReserved, testDesc, nil)
	assert.True(t, ipamerr.IsNotFound(err))
}

func TestReserveAddress(t *testing.T) {
	c, srv := newTestClient(t)
	withVRF(t, c, testVRFName, testRT)

	p, err := c.ReserveAddress("DEV", testRT, testPrefix24, 29, models.PrefixAssignment, models.StatusAssigned, testDesc, nil)
	require.NoError(t, err)
	assert.Equal(t, "10.173.129.0/29", p.Prefix)
	assert.Equal(t, 1, srv.PrefixCount(testRT, testPrefix24))

	p, err = c.ReserveAddress("DEV", testRT, testPrefix24, 29, models.PrefixAssignment, models.StatusAssigned, testDesc, nil)
	require.NoError(t, err)
	assert.Equal(t, "10.173.129.8/29", p.Prefix)

	// родительская сеть с префиксами не даёт удалить VRF
	_, err = c.DeleteVRF(testRT, "")
	assert.Error(t, err)
}
