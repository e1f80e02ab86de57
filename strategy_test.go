package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDriftThreshold_RejectsOutOfRange(t *testing.T) {
	assert.Error(t, ValidateDriftThreshold(0))
	assert.Error(t, ValidateDriftThreshold(51))
	assert.NoError(t, ValidateDriftThreshold(5))
}

func TestValidateClassTargets_RejectsDuplicateClass(t *testing.T) {
	err := ValidateClassTargets([]AssetClassTarget{
		{AssetClass: Equity, TargetPercent: 50},
		{AssetClass: Equity, TargetPercent: 50},
	})
	assert.Error(t, err)
}

func TestValidateClassTargets_RejectsSumOverHundred(t *testing.T) {
	err := ValidateClassTargets([]AssetClassTarget{
		{AssetClass: Equity, TargetPercent: 60},
		{AssetClass: Debt, TargetPercent: 60},
	})
	assert.Error(t, err)
}

func TestValidateSubClassTargets_RejectsInvalidSubClassForParent(t *testing.T) {
	err := ValidateSubClassTargets(Equity, []AssetSubClassTarget{
		{AssetSubClass: SubBond, TargetPercent: 50},
	})
	assert.Error(t, err)
}

func TestValidateSubClassTargets_RejectsDuplicateSubClass(t *testing.T) {
	err := ValidateSubClassTargets(Equity, []AssetSubClassTarget{
		{AssetSubClass: SubStock, TargetPercent: 50},
		{AssetSubClass: SubStock, TargetPercent: 50},
	})
	assert.Error(t, err)
}

func TestValidateStrategy_AcceptsWellFormedStrategy(t *testing.T) {
	s := Strategy{
		DriftThreshold: 5,
		ClassTargets: []AssetClassTarget{
			{AssetClass: Equity, TargetPercent: 60, SubClasses: []AssetSubClassTarget{
				{AssetSubClass: SubStock, TargetPercent: 100},
			}},
			{AssetClass: Debt, TargetPercent: 40, SubClasses: []AssetSubClassTarget{
				{AssetSubClass: SubBond, TargetPercent: 100},
			}},
		},
	}
	assert.NoError(t, ValidateStrategy(s))
}

func TestValidSubClass_MappingMatchesSpec(t *testing.T) {
	assert.True(t, ValidSubClass(Equity, SubETF))
	assert.True(t, ValidSubClass(PreciousMetals, SubGold24K))
	assert.False(t, ValidSubClass(Equity, SubBond))
	assert.False(t, ValidSubClass(Liquidity, SubStock))
}
