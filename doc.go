// Package surveyreg analyzes survey exports that pair a short personality
// inventory with a self-rated health outcome. It cleans the raw export into
// five trait scores, imputes what remains missing, and compares four
// regression families (ordinary least squares, elastic net, linear SVR and
// gradient boosted trees) on identical cross-validation folds, reporting MAE,
// RMSE and R² per model on a held-out split.
//
// The study package ties the pipeline together; the remaining packages are
// usable on their own:
//
//   - dataset: Stata/SAS/CSV ingestion with NaN-encoded missingness
//   - survey: sentinel recoding, the missingness row filter, trait scoring
//   - preprocessing: imputation and standardization
//   - modelselection: holdout split, k-fold partitioning, cross-validation
//   - linear, svm, ensemble: the model families
//   - metrics: MAE, RMSE, R²
//
// See cmd/surveyreg for the command line front end.
package surveyreg
