package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
)

func TestAccepts(t *testing.T) {
	cases := []struct {
		action  enums.AuditAction
		current enums.AssetStatus
		want    bool
	}{
		{enums.AuditActionCheckedOut, enums.AssetStatusAvailable, true},
		{enums.AuditActionCheckedOut, enums.AssetStatusInUse, false},
		{enums.AuditActionCheckedOut, enums.AssetStatusMaintenance, false},
		{enums.AuditActionAssigned, enums.AssetStatusInUse, true},
		{enums.AuditActionAssigned, enums.AssetStatusRetired, false},
		{enums.AuditActionMaintenanceStarted, enums.AssetStatusInUse, true},
		{enums.AuditActionTransferApproved, enums.AssetStatusLost, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Accepts(tc.action, tc.current), "%s from %s", tc.action, tc.current)
	}
}

func TestRequireAvailableReturnsConflict(t *testing.T) {
	err := RequireAvailable(enums.AuditActionCheckedOut, enums.AssetStatusRepair)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.NoError(t, RequireAvailable(enums.AuditActionCheckedOut, enums.AssetStatusAvailable))
}

func TestIssueStatus(t *testing.T) {
	status, ok := IssueStatus(enums.IssueTypeDamaged)
	assert.True(t, ok)
	assert.Equal(t, enums.AssetStatusRepair, status)

	status, _ = IssueStatus(enums.IssueTypeLost)
	assert.Equal(t, enums.AssetStatusLost, status)

	_, ok = IssueStatus("misplaced")
	assert.False(t, ok)
}

func TestNextMaintenanceMonths(t *testing.T) {
	assert.Equal(t, 3, NextMaintenanceMonths(enums.MaintenanceTypePreventive))
	assert.Equal(t, 1, NextMaintenanceMonths(enums.MaintenanceTypeRoutine))
	assert.Equal(t, 0, NextMaintenanceMonths(enums.MaintenanceTypeEmergency))
}
