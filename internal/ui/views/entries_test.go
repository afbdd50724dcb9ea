package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/mbaren/tempo/internal/model"
)

func formView(projects ...model.Project) EntriesView {
	v := EntriesView{projectList: projects, mode: entriesModeAdd}
	v.formInputs = newEntryForm(time.Now(), nil)
	return v
}

func TestEntryFormProjectCycle(t *testing.T) {
	v := formView(
		model.Project{ID: "p1", Name: "Acme"},
		model.Project{ID: "p2", Name: "Globex"},
	)
	assert.Nil(t, v.formProjectID())

	press := func(v EntriesView) EntriesView {
		m, _ := v.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
		return m.(EntriesView)
	}

	v = press(v)
	if assert.NotNil(t, v.formProjectID()) {
		assert.Equal(t, "p1", *v.formProjectID())
	}

	v = press(v)
	if assert.NotNil(t, v.formProjectID()) {
		assert.Equal(t, "p2", *v.formProjectID())
	}

	// Wraps back to no project
	v = press(v)
	assert.Nil(t, v.formProjectID())
}

func TestEntryFormProjectCycleNoProjects(t *testing.T) {
	v := formView()
	m, _ := v.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	v = m.(EntriesView)
	assert.Nil(t, v.formProjectID())
}

func TestProjectCursorForExistingAssignment(t *testing.T) {
	v := EntriesView{projectList: []model.Project{
		{ID: "p1", Name: "Acme"},
		{ID: "p2", Name: "Globex"},
	}}

	id := "p2"
	assert.Equal(t, 2, v.projectCursorFor(&id))
	assert.Equal(t, 0, v.projectCursorFor(nil))

	gone := "deleted"
	assert.Equal(t, 0, v.projectCursorFor(&gone))
}
