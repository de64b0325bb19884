package cli

var (
	RunWithWriter = run
	RenderResult  = renderResult
	RenderReport  = renderReport
)
