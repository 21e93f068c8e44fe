/*
Package transform provides the feature engineering transformers of dsutils. Each one derives a
single new feature column from one or more existing columns, except SelectColumns which narrows
a frame down to a set of columns.

All transformers here are stateless, implementing both entity.Estimator and entity.Transformer,
apart from RatioColumnToValue which learns its divisor in Fit.

When FeatName is omitted the output column gets a default name derived from the input column(s),
e.g. "created_DayOfTheWeek" or "priceToqtyRatio". An existing column with the same name as the
output is replaced at its position.
*/
package transform
