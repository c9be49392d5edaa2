/*
Package contact implements the portfolio contact form.

A Form holds one visitor's Submission. Fields are updated one at a time with
UpdateField; Submit validates the submission, posts it to the hosted form relay
and, when the relay rejects it or cannot be reached, hands a pre-filled mailto:
link to a Launcher so the visitor can send the message from their own mail client.

	form := contact.NewForm(contact.NewValidator(10), relay, launcher, contact.Options{
		MailtoAddress: "me@example.com",
	})
	_ = form.UpdateField(contact.FieldName, "Sam")
	view, outcome, err := form.Submit(ctx)

Only one submission per form may be in flight; a second Submit returns ErrBusy.
After a delivered submission the form is reset and View.Success stays true for
Options.SuccessDelay. A failed delivery keeps the submission so it can be retried.

Registry maps visitor ids to forms and closes forms that have been idle too long.
*/
package contact
