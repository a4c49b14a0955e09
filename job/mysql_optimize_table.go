package job

import (
	"database/sql"
	"fmt"

	"mailflock/newsletter-outbox/log"
)

type mysqlOptimizeTable struct {
	Db        *sql.DB
	TableName string
	SidecarQuitter
}

func (o *mysqlOptimizeTable) Execute() error {
	_, err := o.Db.Exec(fmt.Sprintf("OPTIMIZE TABLE %s;", o.TableName))

	if err == nil {
		log.Logger.Info("optimized MySQL delivery task table successfully")
	} else {
		log.Logger.WithError(err).Error("an error occurred optimizing the MySQL delivery task table")
	}

	if o.QuitSidecar {
		err = o.Quit()
		if err != nil {
			return err
		}
	}

	return err
}
