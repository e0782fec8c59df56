// Package common holds the ambient pieces shared by the library packages and
// the CLI: the logger factory and the engine configuration.
//
// Logging:
//
// Loggers are obtained with logger.GetLogger(name) from
// github.com/lni/dragonboat/v4/logger. InitLoggers installs CreateLogger as
// the factory, so every line reads "LEVEL | name | message", and sets the
// level of the jet, scope, cursor, memtable, instrumented and cli loggers.
// Library packages log engine failures at DEBUG and implicit scope
// fallbacks (implicit rollback, implicit cancel) at WARNING.
//
// Configuration:
//
// Config carries the engine limits and the log level. The library packages
// never read configuration themselves; the CLI fills a Config from flags,
// ISAM_* environment variables and .env files, and hands it to
// memtable.OptionsFromConfig and InitLoggers.
package common
