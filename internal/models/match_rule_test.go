package models_test

import (
	"github.com/envelope-zero/forecast/internal/models"
)

func (suite *TestSuiteStandard) TestMatchRuleFirstByPriority() {
	netflix := suite.createTestRecurringCharge(models.RecurringCharge{Name: "Netflix"})
	streaming := suite.createTestRecurringCharge(models.RecurringCharge{Name: "Streaming"})

	_ = suite.createTestMatchRule(models.MatchRule{RecurringChargeID: streaming.ID, Match: "*Subscription", Priority: 5})
	_ = suite.createTestMatchRule(models.MatchRule{RecurringChargeID: netflix.ID, Match: "Netflix*", Priority: 1})

	id, err := models.MatchRecurringCharge(models.DB, "Netflix Subscription")
	suite.Require().Nil(err)
	if suite.Assert().NotNil(id) {
		suite.Assert().Equal(netflix.ID, *id)
	}

	id, err = models.MatchRecurringCharge(models.DB, "Disney Subscription")
	suite.Require().Nil(err)
	if suite.Assert().NotNil(id) {
		suite.Assert().Equal(streaming.ID, *id)
	}

	id, err = models.MatchRecurringCharge(models.DB, "Groceries")
	suite.Require().Nil(err)
	suite.Assert().Nil(id)
}

func (suite *TestSuiteStandard) TestMatchRuleDeletedWithCharge() {
	charge := suite.createTestRecurringCharge(models.RecurringCharge{})
	rule := suite.createTestMatchRule(models.MatchRule{RecurringChargeID: charge.ID, Match: "*"})

	suite.Require().Nil(models.DB.Delete(&charge).Error)
	suite.Assert().ErrorIs(models.DB.First(&rule, "id = ?", rule.ID).Error, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestMatchRuleEmpty() {
	charge := suite.createTestRecurringCharge(models.RecurringCharge{})
	err := models.DB.Create(&models.MatchRule{RecurringChargeID: charge.ID, Match: "  "}).Error
	suite.Assert().NotNil(err)
}
