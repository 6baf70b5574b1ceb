package main

import (
	"net/http"

	"twinelephant.com/fireworks-web/internal/contact"
	"twinelephant.com/fireworks-web/internal/handlers"
	mw "twinelephant.com/fireworks-web/internal/middleware"
	"twinelephant.com/fireworks-web/internal/navigation"
)

type contactPanel struct {
	handlers.ContactView
	CSRFToken string
}

// handleContactSubmit validates the posted fields and starts the submission.
// Invalid input re-renders the idle form with messages; a form that is
// already submitting ignores the post.
func (s *server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	app := appFrom(r)
	if app.Router.State().Page != navigation.PageContact {
		mw.WriteError(w, r, http.StatusConflict, errNotOnPage.Error())
		return
	}
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	values := contact.Values{
		Name:        r.PostFormValue(string(contact.FieldName)),
		Email:       r.PostFormValue(string(contact.FieldEmail)),
		Phone:       r.PostFormValue(string(contact.FieldPhone)),
		Company:     r.PostFormValue(string(contact.FieldCompany)),
		Subject:     r.PostFormValue(string(contact.FieldSubject)),
		Message:     r.PostFormValue(string(contact.FieldMessage)),
		InquiryType: r.PostFormValue(string(contact.FieldInquiryType)),
		EventDate:   r.PostFormValue(string(contact.FieldEventDate)),
	}

	form := app.Contact()
	if errs := contact.Validate(&values); len(errs) > 0 {
		snap := form.Snapshot()
		if snap.Status == contact.StatusIdle {
			snap.Values = values
		}
		s.renderContact(w, r, handlers.ContactFromSnapshot(snap, errs))
		return
	}
	if form.Status() == contact.StatusIdle {
		form.SetValues(values)
	}
	snap, _ := form.Submit()
	s.renderContact(w, r, handlers.ContactFromSnapshot(snap, nil))
}

// handleContactStatus renders the panel; htmx polls it while a submission is
// in flight.
func (s *server) handleContactStatus(w http.ResponseWriter, r *http.Request) {
	s.renderContact(w, r, s.views.Contact(appFrom(r), nil))
}

func (s *server) renderContact(w http.ResponseWriter, r *http.Request, cv handlers.ContactView) {
	s.render(w, r, "contact_panel", contactPanel{ContactView: cv, CSRFToken: mw.GetSession(r).CSRFToken})
}
