// Package bitbucket submits Code Insights reports and annotations to the
// Bitbucket Cloud REST API.
//
// A [Client] issues requests through a [Transport]; [HTTPTransport] is the
// production implementation, configured with the Pipelines proxy that handles
// authentication. Annotations are sent in order, in chunks of at most
// [MaxAnnotationsPerRequest], up to [MaxAnnotationsPerReport] per report.
// Whether a failed chunk aborts the submission is decided by the client's
// [FailurePolicy].
package bitbucket
