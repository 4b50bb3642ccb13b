//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

type TestSettingPeople struct {
	PeopleNames []string `toml:"people_names"`
}

type TestSettingViecle struct {
	ViecleNames []string `toml:"viecle_names"`
}

func TestRegisterSettings(t *testing.T) {
	s := registeredSettings()
	assert.Equal(t, 2, len(s.ComponentSetting))
}

func TestParseSettings(t *testing.T) {
	ResetSetting()
	tests := []struct {
		name      string
		in        string
		wantError error
		want      *Setting
	}{
		{
			name:      "empty",
			in:        "",
			wantError: nil,
			want: &Setting{
				ComponentSetting: map[string]interface{}{},
				RunGroupSetting:  map[string]interface{}{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotError := globalSetting.parseSetting(tt.in)
			assert.Equal(t, tt.wantError, gotError)
			assert.Equal(t, tt.want, globalSetting)
		})
	}
}

func TestParseComponentSetting(t *testing.T) {
	ResetSetting()
	in := heredoc.Doc(`
		[com.recon]
		shots = 200
		lasso_threshold = 0.1

		[com.sweep]
		trials = 2
		methods = ["linear_inv", "lasso"]
	`)
	err := globalSetting.parseSetting(in)
	assert.Nil(t, err)

	v, ok := GetComponentSetting("recon")
	assert.True(t, ok)
	mapped, ok := v.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, int64(200), mapped["shots"])
	assert.Equal(t, 0.1, mapped["lasso_threshold"])

	v, ok = GetComponentSetting("sweep")
	assert.True(t, ok)
	mapped, ok = v.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, int64(2), mapped["trials"])

	_, ok = GetComponentSetting("unknown")
	assert.False(t, ok)
}

func registeredSettings() *Setting {
	ns := newSetting()
	ns.registerSetting("people", &TestSettingPeople{
		PeopleNames: []string{},
	})
	ns.registerSetting("viecle", &TestSettingViecle{
		ViecleNames: []string{},
	})
	return ns
}
