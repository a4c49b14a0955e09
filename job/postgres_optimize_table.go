package job

import (
	"database/sql"
	"fmt"

	"mailflock/newsletter-outbox/log"
)

type postgresOptimizeTable struct {
	Db        *sql.DB
	TableName string
	SidecarQuitter
}

func (o *postgresOptimizeTable) Execute() error {
	_, err := o.Db.Exec(fmt.Sprintf("VACUUM %s;", o.TableName))

	if err == nil {
		log.Logger.Info("optimized Postgres delivery task table successfully")
	} else {
		log.Logger.WithError(err).Error("an error occurred optimizing the Postgres delivery task table")
	}

	if o.QuitSidecar {
		err = o.Quit()
		if err != nil {
			return err
		}
	}

	return err
}
