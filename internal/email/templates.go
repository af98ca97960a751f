// Package email resolves funnel stages and pending email types to
// rendered subject/body pairs. Templates are embedded so the binary
// has no runtime file layout to get wrong.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"ReachPilot/internal/models"
	"ReachPilot/internal/stage"
)

//go:embed templates/*.html
var templateFS embed.FS

// stageTemplates maps the stages that carry an outbound email to their
// template file. A stage not listed has no template: the engine treats
// that as "send nothing".
var stageTemplates = map[stage.Stage]string{
	stage.JobsListSent:        "jobs_list.html",
	stage.AssessmentCompleted: "assessment_offer.html",
	stage.TrainingOffered:     "training_offer.html",
	stage.FollowUp:            "follow_up.html",
}

var pendingTemplates = map[models.PendingEmailType]string{
	models.PendingAssessmentOffer:      "assessment_offer.html",
	models.PendingSkillAssessmentOffer: "skill_assessment_offer.html",
	models.PendingAssessmentReview:     "assessment_review.html",
	models.PendingRejection:            "rejection.html",
}

var subjects = map[string]string{
	"jobs_list.html":              "Open roles that match your profile",
	"assessment_offer.html":       "Next step: a short assessment",
	"skill_assessment_offer.html": "Your skill assessment is ready",
	"assessment_review.html":      "We reviewed your assessment",
	"training_offer.html":         "An offer to get you job-ready",
	"rejection.html":              "An update on your application",
	"follow_up.html":              "Still interested?",
}

// Resolver implements the engine's TemplateResolver interface.
type Resolver struct {
	tmpl *template.Template
}

func NewResolver() (*Resolver, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Resolver{tmpl: t}, nil
}

type templateData struct {
	Name      string
	Email     string
	QuizScore *float64
}

func (r *Resolver) ForStage(s stage.Stage, lead *models.Lead) (models.Content, bool) {
	name, ok := stageTemplates[s]
	if !ok {
		return models.Content{}, false
	}
	return r.render(name, lead)
}

func (r *Resolver) ForPendingType(t models.PendingEmailType, lead *models.Lead) (models.Content, bool) {
	name, ok := pendingTemplates[t]
	if !ok {
		return models.Content{}, false
	}
	return r.render(name, lead)
}

func (r *Resolver) render(name string, lead *models.Lead) (models.Content, bool) {
	subject, ok := subjects[name]
	if !ok {
		return models.Content{}, false
	}

	data := templateData{
		Name:      lead.Name,
		Email:     lead.Email,
		QuizScore: lead.QuizScore,
	}
	if data.Name == "" {
		data.Name = "there"
	}

	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, name, data); err != nil {
		return models.Content{}, false
	}

	return models.Content{Subject: subject, Body: body.String()}, true
}
