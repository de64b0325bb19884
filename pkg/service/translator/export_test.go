package translator

var ParsePlan = parsePlan
var BuildSystemPrompt = buildSystemPrompt
