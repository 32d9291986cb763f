package cli

import "testing"

func TestRunValidate(t *testing.T) {
	t.Run("valid pair passes", func(t *testing.T) {
		withTestDeps(t)

		if err := runSetup(nil, []string{}); err != nil {
			t.Fatal(err)
		}
		if err := runValidate(nil, []string{}); err != nil {
			t.Errorf("runValidate: %v", err)
		}
	})

	t.Run("missing pair fails", func(t *testing.T) {
		withTestDeps(t)

		if err := runValidate(nil, []string{}); err == nil {
			t.Error("validate without a certificate should fail")
		}
	})

	t.Run("min-days gate can exceed remaining validity", func(t *testing.T) {
		withTestDeps(t)

		if err := runSetup(nil, []string{}); err != nil {
			t.Fatal(err)
		}
		validateMinDays = 10000
		if err := runValidate(nil, []string{}); err == nil {
			t.Error("an impossible minimum validity should fail validation")
		}
	})
}
