// internal/workers/review-reply/notify-escalation/models.go
package notifyescalation

import "review-responder/internal/models"

// Input is the job payload in worker mode.
type Input struct {
	models.Escalation
}

type Output = models.EscalationResult

const (
	subjectTemplate = "{{businessName}}: {{sentiment}} review needs follow-up"

	bodyTemplate = `A {{sentiment}} review was received for {{businessName}}.

Author: {{authorName}}

{{reviewText}}

Main complaint: {{mainNegativePoint}}

Drafted reply:
{{draftReply}}

Escalation ID: {{id}}
Received: {{createdAt}}`
)
