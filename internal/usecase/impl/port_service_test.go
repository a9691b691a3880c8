package impl

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harbor/internal/domain/entity"
	"harbor/internal/state"
	"harbor/internal/state/statetest"
)

func portIDs(ports []entity.Port) []string {
	ids := make([]string, len(ports))
	for i, p := range ports {
		ids[i] = p.ID
	}

	return ids
}

func TestPortService_FetchPorts_ByTitle(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}

	ports, err := NewPortService(env.gw.Ports, env.logger).FetchPorts(context.Background(), rec, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"BEANR", "DEHAM", "UAODS", "NLRTM", "SGSIN"}, portIDs(ports))
	assert.Equal(t, []state.ActionType{state.TypeFetchPortsRequest, state.TypeFetchPortsSuccess}, rec.Types())
}

func TestPortService_FetchPorts_ByDistance(t *testing.T) {
	env := newTestEnv(t)
	bremen := orb.Point{8.8017, 53.0793}

	ports, err := NewPortService(env.gw.Ports, env.logger).FetchPorts(context.Background(), &statetest.Recorder{}, &bremen)
	require.NoError(t, err)

	assert.Equal(t, []string{"DEHAM", "NLRTM", "BEANR", "UAODS", "SGSIN"}, portIDs(ports))
}
