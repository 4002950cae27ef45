package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	req := models.BlockUserRequest{UserID: "bob"}
	require.NoError(t, v.Validate(&req))

	err := v.Validate(&models.BlockUserRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation),
		"validation failures carry the engine's validation code")

	err = v.Validate(&models.CreateUserRequest{
		Name:             "A",
		Gender:           "robot",
		BirthDate:        "not-a-date",
		Country:          "Germany",
		SpokenLanguage:   "d",
		LearningLanguage: "e",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}
