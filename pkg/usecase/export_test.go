package usecase

// ExpandAliases is exported for testing
var ExpandAliases = (*QueryUseCase).expandAliases
