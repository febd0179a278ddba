// Package export submits playlist export jobs to the export queue.
//
// Submission is fire-and-forget: SubmitExport returns once the broker has
// acknowledged the job, never after it has been processed. A publish failure
// is returned as a *domain.DeliveryError because nothing else records the
// request.
package export
