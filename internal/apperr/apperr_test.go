package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ecoleplus/server/internal/apperr"
)

func TestKindOf(t *testing.T) {
	if apperr.KindOf(apperr.Validationf("bad")) != apperr.KindValidation {
		t.Fatal("Validationf должен давать KindValidation")
	}
	if apperr.KindOf(apperr.NotFoundf("nope")) != apperr.KindNotFound {
		t.Fatal("NotFoundf должен давать KindNotFound")
	}
	if apperr.KindOf(apperr.Forbiddenf("no")) != apperr.KindForbidden {
		t.Fatal("Forbiddenf должен давать KindForbidden")
	}
	if apperr.KindOf(errors.New("boom")) != apperr.KindUnknown {
		t.Fatal("посторонняя ошибка — KindUnknown")
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := fmt.Errorf("save class: %w", apperr.Validationf("track must match curriculum track"))
	if !apperr.IsValidation(err) {
		t.Fatal("обёртка через %w должна сохранять вид ошибки")
	}
	if apperr.IsNotFound(err) || apperr.IsForbidden(err) {
		t.Fatal("виды не должны пересекаться")
	}
}

func TestMessageFormatting(t *testing.T) {
	err := apperr.NotFoundf("school %q not found", "lycee-jaures")
	if err.Error() != `school "lycee-jaures" not found` {
		t.Fatalf("неожиданное сообщение: %q", err.Error())
	}
}
