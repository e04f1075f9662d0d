package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleAnalyst, RolePartner, RoleUser} {
		assert.True(t, ValidRole(role), role)
	}
	for _, role := range []string{"", "Admin", "superuser", "root"} {
		assert.False(t, ValidRole(role), role)
	}
}

func TestValidStage(t *testing.T) {
	for _, stage := range Stages {
		assert.True(t, ValidStage(stage), stage)
	}
	// Stage names are case-sensitive board labels.
	for _, stage := range []string{"", "sourced", "Funded", "ic"} {
		assert.False(t, ValidStage(stage), stage)
	}
}

func TestStagesBoardOrder(t *testing.T) {
	assert.Equal(t, []string{"Sourced", "Screen", "Diligence", "IC", "Invested", "Passed"}, Stages)
}
