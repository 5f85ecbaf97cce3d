package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zut-mobile/plan-api/internal/models"
)

func TestEventTypeClassStatusCodesWin(t *testing.T) {
	cases := []struct {
		statusShort string
		want        string
	}{
		{"e", typeClassExam},
		{"ez", typeClassExamRemote},
		{"o", typeClassCancelled},
		{"r", typeClassRector},
		{"dz", typeClassDean},
		{"zz", typeClassRemote},
	}
	for _, tc := range cases {
		event := models.PlanEventRaw{LessonStatusShort: tc.statusShort, LessonForm: "wykład"}
		assert.Equal(t, tc.want, eventTypeClass(event), "status %q", tc.statusShort)
	}
}

func TestEventTypeClassFromKeywords(t *testing.T) {
	assert.Equal(t, typeClassLecture, eventTypeClass(models.PlanEventRaw{LessonForm: "wykład"}))
	assert.Equal(t, typeClassLab, eventTypeClass(models.PlanEventRaw{LessonForm: "laboratorium"}))
	assert.Equal(t, typeClassAuditory, eventTypeClass(models.PlanEventRaw{LessonForm: "audytoryjne"}))
	assert.Equal(t, typeClassExam, eventTypeClass(models.PlanEventRaw{Subject: "Egzamin z fizyki"}))
	// Diacritic-free spelling classifies the same.
	assert.Equal(t, typeClassCancelled, eventTypeClass(models.PlanEventRaw{LessonForm: "odwolane"}))
	assert.Equal(t, typeClassPass, eventTypeClass(models.PlanEventRaw{LessonForm: "zaliczenie"}))
}

func TestEventTypeLabel(t *testing.T) {
	assert.Equal(t, "Wykład", eventTypeLabel(models.PlanEventRaw{LessonForm: "wykład"}))
	assert.Equal(t, "Egzamin", eventTypeLabel(models.PlanEventRaw{LessonStatusShort: "e"}))
	assert.Equal(t, "Odwołane", eventTypeLabel(models.PlanEventRaw{LessonStatusShort: "o"}))
	// Remote exams keep the raw form text; only the plain exam class maps to
	// the fixed label.
	assert.Equal(t, "egzamin zdalny", eventTypeLabel(models.PlanEventRaw{LessonStatusShort: "ez", LessonForm: "egzamin zdalny"}))
	// Unclassified events echo the raw lesson form.
	assert.Equal(t, "seminarium", eventTypeLabel(models.PlanEventRaw{LessonForm: "seminarium"}))
}

func TestResolveFilterTypeKeyPrecedence(t *testing.T) {
	// The short form wins over the long form.
	key, ok := resolveFilterTypeKey(models.PlanEventRaw{LessonFormShort: "L", LessonForm: "wykład"})
	assert.True(t, ok)
	assert.Equal(t, "lab", key)

	key, ok = resolveFilterTypeKey(models.PlanEventRaw{LessonForm: "audytoryjne"})
	assert.True(t, ok)
	assert.Equal(t, "aud", key)

	_, ok = resolveFilterTypeKey(models.PlanEventRaw{LessonForm: "seminarium"})
	assert.False(t, ok)
}

func TestNormalizeFold(t *testing.T) {
	assert.Equal(t, "zarzadzanie", normalizeFold("Zarządzanie"))
	assert.Equal(t, "lacznosc", normalizeFold("Łączność"))
	assert.Equal(t, "wyklad", normalizeFold("  WYKŁAD  "))
}
