package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyBundle_WithDefaults(t *testing.T) {
	got := PolicyBundle{}.WithDefaults()
	assert.Equal(t, PolicyBundle{
		VMScheduler:       VMSchedulerTimeShared,
		CloudletScheduler: CloudletSchedulerTimeShared,
		Allocation:        AllocationFirstFit,
	}, got)
}

func TestPolicyBundle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bundle  PolicyBundle
		wantErr string
	}{
		{"empty is valid", PolicyBundle{}, ""},
		{"uniform space-shared", UniformPolicy(VMSchedulerSpaceShared), ""},
		{"bad vm scheduler", PolicyBundle{VMScheduler: "fair"}, "unknown VM scheduler"},
		{"bad cloudlet scheduler", PolicyBundle{CloudletScheduler: "lottery"}, "unknown cloudlet scheduler"},
		{"bad allocation", PolicyBundle{Allocation: "best-fit"}, "unknown allocation policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bundle.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPolicyBundle_Label(t *testing.T) {
	assert.Equal(t, "TimeShared", PolicyBundle{}.Label())
	assert.Equal(t, "SpaceShared", UniformPolicy(VMSchedulerSpaceShared).Label())
	assert.Equal(t, "TimeShared/SpaceShared", PolicyBundle{CloudletScheduler: CloudletSchedulerSpaceShared}.Label())
}
