/*
Package dsutils provides data science utilities for working with frames (column typed tables),
centered around pipelines of fit/transform transformers, specified in JSON:

	config := dsutils.NewConfig()
	pipeline, err := dsutils.NewPipeline(config, specData)
	...
	out, fitted, err := pipeline.FitTransform(train, nil)
	...
	scored, err := fitted.Transform(test)

The individual transformers are available in entity/transform (feature engineering) and
entity/preprocess (preprocessing), for direct usage without pipelines.
Fetching, persisting and mailing frames is provided in pkg/datafetch, pkg/persist and pkg/mail.
*/
package dsutils
